package importapp_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	importapp "github.com/stockledger/backend/internal/application/import"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) Archive(ctx context.Context, kind importapp.Kind, registerID uint64, filename string, data []byte) (string, error) {
	args := m.Called(ctx, kind, registerID, filename, data)
	return args.String(0), args.Error(1)
}

type importFixture struct {
	db        *gorm.DB
	svc       *importapp.BulkImportService
	outward   *appinv.OutwardService
	lots      *persistence.GormProductItemRepository
	productID uint64
}

func newImportFixture(t *testing.T, archive importapp.UploadArchive) *importFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, persistence.Models()...)
	units := []catalog.Unit{
		{ID: 1, Name: "Piece", ConversionFactor: decimal.NewFromInt(1)},
		{ID: 2, Name: "Meter", ConversionFactor: decimal.NewFromInt(1)},
		{ID: 3, Name: "Roll", BaseUnit: "Meter", ConversionFactor: decimal.NewFromInt(15)},
	}
	require.NoError(t, db.Create(&units).Error)
	product := &catalog.ProductMaster{Name: "PPF Gloss"}
	require.NoError(t, db.Create(product).Error)

	scope := persistence.NewGormTransactionScope(db)
	resolver := appcatalog.NewUnitResolver(persistence.NewGormUnitRepository(db), "Piece")
	opts := appinv.DefaultLedgerOptions()
	inward := appinv.NewInwardService(scope, resolver, nil, zap.NewNop(), opts)
	outward := appinv.NewOutwardService(scope, resolver, nil, zap.NewNop(), opts)

	return &importFixture{
		db:        db,
		svc:       importapp.NewBulkImportService(inward, outward, resolver, archive, zap.NewNop(), 1<<20),
		outward:   outward,
		lots:      persistence.NewGormProductItemRepository(db),
		productID: product.ID,
	}
}

func (f *importFixture) lotByBarcode(t *testing.T, barcode string) *inventory.ProductItem {
	t.Helper()
	lot, err := f.lots.FindByBarcode(context.Background(), barcode)
	require.NoError(t, err)
	return lot
}

func (f *importFixture) lotCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&inventory.ProductItem{}).Count(&n).Error)
	return n
}

func TestBulkImportService_ImportInward(t *testing.T) {
	ctx := context.Background()

	t.Run("skips non-positive rows and merges by barcode", func(t *testing.T) {
		f := newImportFixture(t, nil)
		data := "Product ID,Barcode,Qty,Location\n" +
			"ID:1 - PPF Gloss,R-1,15,Rack A\n" +
			"1,R-2,0,\n" +
			"1,R-3,,\n" +
			"1,R-1,5,\n"
		res, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{Filename: "in.csv", Data: []byte(data)})
		require.NoError(t, err)

		assert.NotZero(t, res.RegisterID)
		assert.Equal(t, 4, res.TotalRows)
		assert.Equal(t, 2, res.AppliedRows)
		assert.Equal(t, 2, res.SkippedRows)
		assert.Equal(t, int64(1), f.lotCount(t))

		lot := f.lotByBarcode(t, "R-1")
		assert.True(t, lot.TotalQuantity.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, "Rack A", lot.StockLocation)
	})

	t.Run("unit fallback uses the row unit then the upload default", func(t *testing.T) {
		f := newImportFixture(t, nil)
		data := "product,barcode,quantity,uom\n1,A,10,\n1,B,1,ID:3 - Roll\n1,C,2,piece\n"
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename:    "in.csv",
			Data:        []byte(data),
			DefaultUnit: "Meter",
		})
		require.NoError(t, err)

		assert.Equal(t, uint64(2), *f.lotByBarcode(t, "A").UnitID)
		assert.Equal(t, uint64(3), *f.lotByBarcode(t, "B").UnitID)
		assert.Equal(t, uint64(1), *f.lotByBarcode(t, "C").UnitID)
	})

	t.Run("without any unit the system default applies", func(t *testing.T) {
		f := newImportFixture(t, nil)
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename: "in.csv", Data: []byte("product,barcode,qty\n1,A,1\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), *f.lotByBarcode(t, "A").UnitID)
	})

	t.Run("a failing row aborts the upload with its row number", func(t *testing.T) {
		f := newImportFixture(t, nil)
		data := "product,barcode,qty\n1,A,5\n999,B,5\n"
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{Filename: "in.csv", Data: []byte(data)})

		var rowErr *importapp.ImportRowError
		require.True(t, errors.As(err, &rowErr))
		assert.Equal(t, 3, rowErr.Row)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, catalog.CodeProductNotFound, de.Code)
		assert.Zero(t, f.lotCount(t))
	})

	t.Run("an unknown unit id in a row is not replaced", func(t *testing.T) {
		f := newImportFixture(t, nil)
		data := "product,barcode,qty,uom\n1,A,5,piece\n1,B,5,ID:42 - Gone\n"
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename: "in.csv", Data: []byte(data), DefaultUnit: "Meter",
		})

		var rowErr *importapp.ImportRowError
		require.True(t, errors.As(err, &rowErr))
		assert.Equal(t, 3, rowErr.Row)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, catalog.CodeUnresolvedUnit, de.Code)
		assert.Zero(t, f.lotCount(t))
	})

	t.Run("non-numeric quantity is a malformed row", func(t *testing.T) {
		f := newImportFixture(t, nil)
		data := "product,barcode,qty\n1,A,5\n1,B,five\n"
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{Filename: "in.csv", Data: []byte(data)})
		require.ErrorIs(t, err, inventory.ErrMalformedRow)

		de, _ := shared.AsDomainError(err)
		assert.Equal(t, 3, de.Details["row"])
		assert.Equal(t, "qty", de.Details["column"])
		assert.Equal(t, "five", de.Details["value"])
		assert.Zero(t, f.lotCount(t))
	})

	t.Run("a new lot without product id is a malformed row", func(t *testing.T) {
		f := newImportFixture(t, nil)
		data := "product,barcode,qty\n,NEW,5\n"
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{Filename: "in.csv", Data: []byte(data)})
		require.ErrorIs(t, err, inventory.ErrMalformedRow)

		var rowErr *importapp.ImportRowError
		require.True(t, errors.As(err, &rowErr))
		assert.Equal(t, 2, rowErr.Row)
	})

	t.Run("a known barcode does not need the product id", func(t *testing.T) {
		f := newImportFixture(t, nil)
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename: "in.csv", Data: []byte("product,barcode,qty\n1,A,5\n"),
		})
		require.NoError(t, err)
		_, err = f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename: "in.csv", Data: []byte("product,barcode,qty\n,A,5\n"),
		})
		require.NoError(t, err)
		assert.True(t, f.lotByBarcode(t, "A").TotalQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("all rows skipped commits nothing", func(t *testing.T) {
		f := newImportFixture(t, nil)
		res, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename: "in.csv", Data: []byte("product,barcode,qty\n1,A,0\n1,B,-2\n"),
		})
		require.NoError(t, err)
		assert.Zero(t, res.RegisterID)
		assert.Equal(t, 2, res.SkippedRows)

		var registers int64
		require.NoError(t, f.db.Model(&inventory.InwardRegister{}).Count(&registers).Error)
		assert.Zero(t, registers)
	})

	t.Run("sheet without quantity column", func(t *testing.T) {
		f := newImportFixture(t, nil)
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename: "in.csv", Data: []byte("product,barcode\n1,A\n"),
		})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "ERR_IMPORT_MISSING_HEADER", de.Code)
	})

	t.Run("unsupported file", func(t *testing.T) {
		f := newImportFixture(t, nil)
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{Filename: "in.txt", Data: []byte("x")})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "ERR_IMPORT_UNSUPPORTED_FORMAT", de.Code)
	})
}

func TestBulkImportService_Archive(t *testing.T) {
	ctx := context.Background()
	data := []byte("product,barcode,qty\n1,A,1\n")

	t.Run("archives after commit", func(t *testing.T) {
		archive := &mockArchive{}
		archive.On("Archive", mock.Anything, importapp.KindInward, mock.AnythingOfType("uint64"), "in.csv", data).
			Return("imports/inward/1/in.csv", nil).Once()
		f := newImportFixture(t, archive)

		res, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{Filename: "in.csv", Data: data})
		require.NoError(t, err)
		assert.Equal(t, "imports/inward/1/in.csv", res.ArchiveKey)
		archive.AssertExpectations(t)
	})

	t.Run("archive failure keeps the commit", func(t *testing.T) {
		archive := &mockArchive{}
		archive.On("Archive", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("bucket unavailable")).Once()
		f := newImportFixture(t, archive)

		res, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{Filename: "in.csv", Data: data})
		require.NoError(t, err)
		assert.Empty(t, res.ArchiveKey)
		assert.Equal(t, int64(1), f.lotCount(t))
	})

	t.Run("failed import is not archived", func(t *testing.T) {
		archive := &mockArchive{}
		f := newImportFixture(t, archive)
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename: "in.csv", Data: []byte("product,barcode,qty\n999,A,1\n"),
		})
		require.Error(t, err)
		archive.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func outwardWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, wb.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	return buf.Bytes()
}

func TestBulkImportService_ImportOutward(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *importFixture) *inventory.ProductItem {
		t.Helper()
		_, err := f.svc.ImportInward(ctx, importapp.InwardImportRequest{
			Filename: "in.csv", Data: []byte("product,barcode,qty,unit\n1,CABLE,15,Meter\n"),
		})
		require.NoError(t, err)
		return f.lotByBarcode(t, "CABLE")
	}

	t.Run("consumes by lot id and barcode", func(t *testing.T) {
		f := newImportFixture(t, nil)
		lot := seed(t, f)

		data := outwardWorkbook(t,
			[]any{"Lot ID", "Barcode", "Quantity Used"},
			[]any{"ID:1 - CABLE", "", 2.5},
			[]any{"", "", 0},
			[]any{"", "CABLE", 2.5},
		)
		res, err := f.svc.ImportOutward(ctx, importapp.OutwardImportRequest{Filename: "out.xlsx", Data: data})
		require.NoError(t, err)
		assert.Equal(t, 2, res.AppliedRows)
		assert.Equal(t, 1, res.SkippedRows)

		got, err := f.lots.FindByID(ctx, lot.ID)
		require.NoError(t, err)
		assert.True(t, got.AvailableQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("insufficient stock names the row", func(t *testing.T) {
		f := newImportFixture(t, nil)
		lot := seed(t, f)

		data := outwardWorkbook(t,
			[]any{"barcode", "qty"},
			[]any{"CABLE", 10},
			[]any{"CABLE", 10},
		)
		_, err := f.svc.ImportOutward(ctx, importapp.OutwardImportRequest{Filename: "out.xlsx", Data: data})
		require.ErrorIs(t, err, inventory.ErrInsufficientStock)

		var rowErr *importapp.ImportRowError
		require.True(t, errors.As(err, &rowErr))
		assert.Equal(t, 3, rowErr.Row)

		got, err := f.lots.FindByID(ctx, lot.ID)
		require.NoError(t, err)
		assert.True(t, got.AvailableQuantity.Equal(decimal.NewFromInt(15)))
	})

	t.Run("row without a lot reference", func(t *testing.T) {
		f := newImportFixture(t, nil)
		seed(t, f)
		data := outwardWorkbook(t, []any{"lot", "qty"}, []any{"", 1})
		_, err := f.svc.ImportOutward(ctx, importapp.OutwardImportRequest{Filename: "out.xlsx", Data: data})
		require.ErrorIs(t, err, inventory.ErrMalformedRow)
	})

	t.Run("roll of meters converts", func(t *testing.T) {
		f := newImportFixture(t, nil)
		lot := seed(t, f)
		data := outwardWorkbook(t, []any{"barcode", "qty", "unit"}, []any{"CABLE", 1, "Roll"})
		_, err := f.svc.ImportOutward(ctx, importapp.OutwardImportRequest{Filename: "out.xlsx", Data: data})
		require.NoError(t, err)

		got, err := f.lots.FindByID(ctx, lot.ID)
		require.NoError(t, err)
		assert.True(t, got.AvailableQuantity.IsZero())
		assert.Equal(t, inventory.LotStatusUsed, got.Status)
	})
}
