package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// quantityScale is the number of fractional digits stored for quantities.
const quantityScale = 4

// Unit is a unit of measure. Units sharing the same BaseUnit form a family
// and can be converted into one another through their ConversionFactor,
// which expresses how many base units one of this unit represents
// (e.g. ROLL with factor 15 in family METER).
type Unit struct {
	ID               uint64          `gorm:"primaryKey;autoIncrement"`
	Name             string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BaseUnit         string          `gorm:"type:varchar(50);not null;default:''"`
	ConversionFactor decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
}

// TableName returns the table name for GORM
func (Unit) TableName() string {
	return "units"
}

// NewUnit creates a unit. An empty base unit makes the unit the root of its
// own family.
func NewUnit(name, baseUnit string, factor decimal.Decimal) (*Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit name cannot be empty")
	}
	if len(name) > 50 {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit name cannot exceed 50 characters")
	}
	if factor.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CONVERSION_FACTOR", "Conversion factor must be positive")
	}
	return &Unit{
		Name:             name,
		BaseUnit:         strings.TrimSpace(baseUnit),
		ConversionFactor: factor,
	}, nil
}

// Family returns the normalized family key of the unit.
func (u *Unit) Family() string {
	if b := strings.TrimSpace(u.BaseUnit); b != "" {
		return strings.ToLower(b)
	}
	return strings.ToLower(strings.TrimSpace(u.Name))
}

// SameFamily reports whether both units belong to the same family.
func (u *Unit) SameFamily(other *Unit) bool {
	return u.Family() == other.Family()
}

// Matches reports whether the hint names this unit, either by its own name
// or by its base unit. The comparison ignores case and surrounding space.
func (u *Unit) Matches(hint string) (byName, byBase bool) {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return false, false
	}
	byName = strings.ToLower(strings.TrimSpace(u.Name)) == h
	byBase = strings.ToLower(strings.TrimSpace(u.BaseUnit)) == h
	return byName, byBase
}

// ConvertTo converts a quantity expressed in u into the target unit.
func (u *Unit) ConvertTo(quantity decimal.Decimal, target *Unit) (decimal.Decimal, error) {
	if u.ID == target.ID {
		return quantity, nil
	}
	if !u.SameFamily(target) {
		return decimal.Zero, NewUnitFamilyMismatchError(u, target)
	}
	if target.ConversionFactor.LessThanOrEqual(decimal.Zero) || u.ConversionFactor.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_CONVERSION_FACTOR", "Conversion factor must be positive")
	}
	return quantity.Mul(u.ConversionFactor).Div(target.ConversionFactor).Round(quantityScale), nil
}

// OptionLabel renders the unit the way spreadsheet templates embed ids.
func (u *Unit) OptionLabel() string {
	return FormatOption(u.ID, u.Name)
}
