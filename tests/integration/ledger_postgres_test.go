package integration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

type ledgerServices struct {
	inward   *appinv.InwardService
	outward  *appinv.OutwardService
	transfer *appinv.TransferService
	lots     *persistence.GormProductItemRepository
	product  *catalog.ProductMaster
}

func newLedgerServices(t *testing.T, tdb *TestDB) *ledgerServices {
	t.Helper()

	units := []catalog.Unit{
		{Name: "Piece", ConversionFactor: decimal.NewFromInt(1)},
		{Name: "Meter", ConversionFactor: decimal.NewFromInt(1)},
		{Name: "Roll", BaseUnit: "Meter", ConversionFactor: decimal.NewFromInt(15)},
	}
	require.NoError(t, tdb.DB.Create(&units).Error)
	product := &catalog.ProductMaster{Name: "PPF Gloss", MinThreshold: decimal.NewFromInt(2)}
	require.NoError(t, tdb.DB.Create(product).Error)

	scope := persistence.NewGormTransactionScope(tdb.DB)
	resolver := appcatalog.NewUnitResolver(persistence.NewGormUnitRepository(tdb.DB), "Piece")
	opts := appinv.DefaultLedgerOptions()
	log := zap.NewNop()

	return &ledgerServices{
		inward:   appinv.NewInwardService(scope, resolver, nil, log, opts),
		outward:  appinv.NewOutwardService(scope, resolver, nil, log, opts),
		transfer: appinv.NewTransferService(scope, resolver, persistence.NewGormStockTransferRepository(tdb.DB), nil, log, opts),
		lots:     persistence.NewGormProductItemRepository(tdb.DB),
		product:  product,
	}
}

func (s *ledgerServices) receive(t *testing.T, qty int64, barcode string) uint64 {
	t.Helper()
	res, err := s.inward.CreateInward(context.Background(), appinv.CreateInwardRequest{
		Lines: []appinv.InwardLineInput{{
			ProductID: s.product.ID,
			Quantity:  decimal.NewFromInt(qty),
			Identity:  inventory.LotIdentity{Barcode: barcode},
		}},
	})
	require.NoError(t, err)
	require.Len(t, res.CreatedLots, 1)
	return res.CreatedLots[0]
}

func (s *ledgerServices) consume(ctx context.Context, lotID uint64, qty decimal.Decimal) error {
	_, err := s.outward.CreateOutward(ctx, appinv.CreateOutwardRequest{
		Lines: []appinv.OutwardLineInput{{Lot: appinv.LotRef{LotID: lotID}, Quantity: qty}},
	})
	return err
}

func TestMigrations_Schema(t *testing.T) {
	tdb := NewTestDB(t)

	for _, table := range []string{
		"units", "product_masters", "product_items", "inward_registers", "inward_items",
		"outward_registers", "outward_items", "stock_transfers", "roles", "role_privileges",
		"vehicles", "vehicle_usages",
	} {
		assert.True(t, tdb.DB.Migrator().HasTable(table), "missing table %s", table)
	}

	t.Run("available quantity can never go negative", func(t *testing.T) {
		svc := newLedgerServices(t, tdb)
		lotID := svc.receive(t, 5, "CHK-1")
		err := tdb.DB.Exec("UPDATE product_items SET available_quantity = -1 WHERE id = ?", lotID).Error
		assert.Error(t, err)
	})
}

func TestOutward_ConcurrentDrawsNeverOverdraw(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newLedgerServices(t, tdb)
	lotID := svc.receive(t, 10, "CONC-1")

	const workers = 12
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		applied      int
		insufficient int
		unexpected   []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := svc.consume(context.Background(), lotID, decimal.NewFromInt(1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				applied++
			case errors.Is(err, inventory.ErrInsufficientStock):
				insufficient++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, unexpected)
	assert.Equal(t, 10, applied)
	assert.Equal(t, 2, insufficient)

	lot, err := svc.lots.FindByID(context.Background(), lotID)
	require.NoError(t, err)
	assert.True(t, lot.AvailableQuantity.IsZero())
	assert.Equal(t, inventory.LotStatusUsed, lot.Status)

	var consumed decimal.Decimal
	require.NoError(t, tdb.DB.Raw("SELECT COALESCE(SUM(quantity_used), 0) FROM outward_items WHERE product_item_id = ?", lotID).
		Scan(&consumed).Error)
	assert.True(t, consumed.Equal(decimal.NewFromInt(10)), "consumed %s", consumed)
}

func TestOutward_TwoRegistersRaceForOneLot(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newLedgerServices(t, tdb)
	lotID := svc.receive(t, 10, "RACE-1")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.consume(context.Background(), lotID, decimal.NewFromInt(6))
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, inventory.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	lot, err := svc.lots.FindByID(context.Background(), lotID)
	require.NoError(t, err)
	assert.True(t, lot.AvailableQuantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, inventory.LotStatusInStock, lot.Status)
}

func TestOutward_FailedLineRollsBackRegister(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newLedgerServices(t, tdb)
	first := svc.receive(t, 4, "RB-1")
	second := svc.receive(t, 1, "RB-2")

	_, err := svc.outward.CreateOutward(context.Background(), appinv.CreateOutwardRequest{
		Lines: []appinv.OutwardLineInput{
			{Lot: appinv.LotRef{LotID: first}, Quantity: decimal.NewFromInt(3)},
			{Lot: appinv.LotRef{LotID: second}, Quantity: decimal.NewFromInt(2)},
		},
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	lot, err := svc.lots.FindByID(context.Background(), first)
	require.NoError(t, err)
	assert.True(t, lot.AvailableQuantity.Equal(decimal.NewFromInt(4)))

	var registers int64
	require.NoError(t, tdb.DB.Table("outward_registers").Count(&registers).Error)
	assert.Zero(t, registers)
}

func TestTransfer_KeepsQuantity(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newLedgerServices(t, tdb)
	lotID := svc.receive(t, 6, "TR-1")

	res, err := svc.transfer.CreateTransfer(context.Background(), appinv.CreateTransferRequest{
		ProductItemID: lotID,
		ToLocation:    "Bay 4",
		TransferBy:    "ravi",
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.DefaultLocation, res.FromLocation)

	lot, err := svc.lots.FindByID(context.Background(), lotID)
	require.NoError(t, err)
	assert.Equal(t, "Bay 4", lot.StockLocation)
	assert.True(t, lot.AvailableQuantity.Equal(decimal.NewFromInt(6)))
}

func TestRoleRepository_ReplacePrivileges(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormRoleRepository(tdb.DB)
	ctx := context.Background()

	role := &identity.Role{RoleName: "Store Keeper"}
	require.NoError(t, tdb.DB.Create(role).Error)

	require.NoError(t, repo.ReplacePrivileges(ctx, role.ID, []identity.RolePrivilege{
		{RoleID: role.ID, Module: identity.ModuleInventory, CanView: true},
		{RoleID: role.ID, Module: identity.ModuleInventoryOutward, CanView: true, CanAdd: true},
	}))
	require.NoError(t, repo.ReplacePrivileges(ctx, role.ID, []identity.RolePrivilege{
		{RoleID: role.ID, Module: identity.ModuleStockTransfer, CanView: true},
	}))

	privs, err := repo.FindPrivileges(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, privs, 1)
	assert.Equal(t, identity.ModuleStockTransfer, privs[0].Module)

	_, err = repo.FindByID(ctx, role.ID+100)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
