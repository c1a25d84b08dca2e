package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/shared"
)

func testUnits() (meter, roll, piece *Unit) {
	meter = &Unit{ID: 1, Name: "Meter", BaseUnit: "Meter", ConversionFactor: decimal.NewFromInt(1)}
	roll = &Unit{ID: 2, Name: "Roll", BaseUnit: "Meter", ConversionFactor: decimal.NewFromInt(15)}
	piece = &Unit{ID: 3, Name: "Piece", BaseUnit: "", ConversionFactor: decimal.NewFromInt(1)}
	return meter, roll, piece
}

func TestNewUnit(t *testing.T) {
	t.Run("creates unit", func(t *testing.T) {
		u, err := NewUnit("  Roll ", "Meter", decimal.NewFromInt(15))
		require.NoError(t, err)
		assert.Equal(t, "Roll", u.Name)
		assert.Equal(t, "meter", u.Family())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewUnit(" ", "Meter", decimal.NewFromInt(1))
		require.Error(t, err)
	})

	t.Run("rejects non-positive factor", func(t *testing.T) {
		_, err := NewUnit("Roll", "Meter", decimal.Zero)
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_CONVERSION_FACTOR", de.Code)
	})
}

func TestUnit_Family(t *testing.T) {
	meter, roll, piece := testUnits()

	assert.True(t, meter.SameFamily(roll))
	assert.False(t, roll.SameFamily(piece))
	assert.Equal(t, "piece", piece.Family())
}

func TestUnit_Matches(t *testing.T) {
	_, roll, _ := testUnits()

	byName, byBase := roll.Matches(" roll ")
	assert.True(t, byName)
	assert.False(t, byBase)

	byName, byBase = roll.Matches("METER")
	assert.False(t, byName)
	assert.True(t, byBase)

	byName, byBase = roll.Matches("")
	assert.False(t, byName)
	assert.False(t, byBase)
}

func TestUnit_ConvertTo(t *testing.T) {
	meter, roll, piece := testUnits()

	t.Run("roll to meter", func(t *testing.T) {
		q, err := roll.ConvertTo(decimal.NewFromInt(2), meter)
		require.NoError(t, err)
		assert.True(t, q.Equal(decimal.NewFromInt(30)), q.String())
	})

	t.Run("meter to roll rounds to four places", func(t *testing.T) {
		q, err := meter.ConvertTo(decimal.NewFromInt(10), roll)
		require.NoError(t, err)
		assert.Equal(t, "0.6667", q.StringFixed(4))
	})

	t.Run("same unit is identity", func(t *testing.T) {
		q, err := roll.ConvertTo(decimal.RequireFromString("2.5"), roll)
		require.NoError(t, err)
		assert.True(t, q.Equal(decimal.RequireFromString("2.5")))
	})

	t.Run("cross family fails", func(t *testing.T) {
		_, err := piece.ConvertTo(decimal.NewFromInt(1), meter)
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, CodeUnitFamilyMismatch, de.Code)
	})
}

func TestFormatOption(t *testing.T) {
	_, roll, _ := testUnits()
	assert.Equal(t, "ID:2 - Roll", roll.OptionLabel())

	sku := "PPF-01"
	p := &ProductMaster{ID: 9, SKU: &sku, Name: "Gloss Film"}
	assert.Equal(t, "ID:9 - PPF-01 Gloss Film", p.OptionLabel())
}

func TestProductMaster_IsLow(t *testing.T) {
	p := &ProductMaster{ID: 1, Name: "Film", MinThreshold: decimal.NewFromInt(5)}
	assert.True(t, p.IsLow(decimal.NewFromInt(5)))
	assert.False(t, p.IsLow(decimal.NewFromInt(6)))

	noThreshold := &ProductMaster{ID: 2, Name: "Tint"}
	assert.False(t, noThreshold.IsLow(decimal.Zero))
}
