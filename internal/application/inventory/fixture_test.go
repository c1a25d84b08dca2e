package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/fleet"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Unit ids as seeded by newLedgerFixture
const (
	unitPiece uint64 = 1
	unitMeter uint64 = 2
	unitRoll  uint64 = 3
	unitKg    uint64 = 4
)

type ledgerFixture struct {
	db        *gorm.DB
	events    *testutil.RecordingPublisher
	inward    *appinv.InwardService
	outward   *appinv.OutwardService
	transfer  *appinv.TransferService
	query     *appinv.QueryService
	lots      *persistence.GormProductItemRepository
	productID uint64
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	return newLedgerFixtureWithOptions(t, appinv.DefaultLedgerOptions())
}

func newLedgerFixtureWithOptions(t *testing.T, opts appinv.LedgerOptions) *ledgerFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, persistence.Models()...)

	units := []catalog.Unit{
		{ID: unitPiece, Name: "Piece", ConversionFactor: decimal.NewFromInt(1)},
		{ID: unitMeter, Name: "Meter", ConversionFactor: decimal.NewFromInt(1)},
		{ID: unitRoll, Name: "Roll", BaseUnit: "Meter", ConversionFactor: decimal.NewFromInt(15)},
		{ID: unitKg, Name: "Kg", ConversionFactor: decimal.NewFromInt(1)},
	}
	require.NoError(t, db.Create(&units).Error)

	product := &catalog.ProductMaster{Name: "Brake cable", MinThreshold: decimal.NewFromInt(3)}
	require.NoError(t, db.Create(product).Error)
	require.NoError(t, db.Create(&fleet.Vehicle{Name: "Truck 7", VehicleNumber: "KA-01-7777", Status: "ACTIVE"}).Error)

	scope := persistence.NewGormTransactionScope(db)
	resolver := appcatalog.NewUnitResolver(persistence.NewGormUnitRepository(db), "Piece")
	events := &testutil.RecordingPublisher{}
	logger := zap.NewNop()
	lots := persistence.NewGormProductItemRepository(db)

	return &ledgerFixture{
		db:       db,
		events:   events,
		inward:   appinv.NewInwardService(scope, resolver, events, logger, opts),
		outward:  appinv.NewOutwardService(scope, resolver, events, logger, opts),
		transfer: appinv.NewTransferService(scope, resolver, persistence.NewGormStockTransferRepository(db), events, logger, opts),
		query: appinv.NewQueryService(lots,
			persistence.NewGormInwardRepository(db),
			persistence.NewGormOutwardRepository(db),
			persistence.NewGormProductRepository(db)),
		lots:      lots,
		productID: product.ID,
	}
}

// receive records a single-line inward and returns the lot it landed on
func (f *ledgerFixture) receive(t *testing.T, barcode, qty string, unit uint64) *inventory.ProductItem {
	t.Helper()
	res, err := f.inward.CreateInward(context.Background(), appinv.CreateInwardRequest{
		Lines: []appinv.InwardLineInput{{
			ProductID: f.productID,
			Quantity:  testutil.Dec(t, qty),
			Unit:      appcatalog.UnitRef{ID: testutil.Ptr(unit)},
			Identity:  inventory.NewLotIdentity(barcode, ""),
		}},
	})
	require.NoError(t, err)
	ids := append(append([]uint64{}, res.CreatedLots...), res.UpdatedLots...)
	require.Len(t, ids, 1)
	return f.lot(t, ids[0])
}

func (f *ledgerFixture) lot(t *testing.T, id uint64) *inventory.ProductItem {
	t.Helper()
	lot, err := f.lots.FindByID(context.Background(), id)
	require.NoError(t, err)
	return lot
}

func (f *ledgerFixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func consumeLine(lotID uint64, qty decimal.Decimal) appinv.OutwardLineInput {
	return appinv.OutwardLineInput{Lot: appinv.LotRef{LotID: lotID}, Quantity: qty}
}

func assertInvariant(t *testing.T, lot *inventory.ProductItem) {
	t.Helper()
	require.NoError(t, lot.CheckInvariant())
	require.True(t, lot.AvailableQuantity.GreaterThanOrEqual(decimal.Zero))
	require.True(t, lot.AvailableQuantity.LessThanOrEqual(lot.TotalQuantity))
}
