package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductItemRepository implements ProductItemRepository using GORM
type GormProductItemRepository struct {
	db *gorm.DB
}

// NewGormProductItemRepository creates a new GormProductItemRepository
func NewGormProductItemRepository(db *gorm.DB) *GormProductItemRepository {
	return &GormProductItemRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormProductItemRepository) FindByID(ctx context.Context, id uint64) (*inventory.ProductItem, error) {
	var item inventory.ProductItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &item, nil
}

// FindByBarcode finds the lot carrying the barcode
func (r *GormProductItemRepository) FindByBarcode(ctx context.Context, barcode string) (*inventory.ProductItem, error) {
	return r.findOne(ctx, "barcode = ?", barcode)
}

// FindByIMEI finds the lot carrying the IMEI
func (r *GormProductItemRepository) FindByIMEI(ctx context.Context, imei string) (*inventory.ProductItem, error) {
	return r.findOne(ctx, "imei = ?", imei)
}

// FindByCode finds a lot by barcode or IMEI. A barcode match wins when the
// code happens to be both.
func (r *GormProductItemRepository) FindByCode(ctx context.Context, code string) (*inventory.ProductItem, error) {
	item, err := r.FindByBarcode(ctx, code)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return r.FindByIMEI(ctx, code)
}

func (r *GormProductItemRepository) findOne(ctx context.Context, cond string, value string) (*inventory.ProductItem, error) {
	var item inventory.ProductItem
	if err := r.db.WithContext(ctx).Where(cond, value).Take(&item).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &item, nil
}

// FindByIDsForUpdate loads the lots with SELECT ... FOR UPDATE ordered by
// id, so concurrent transactions queue on the rows in the same order.
func (r *GormProductItemRepository) FindByIDsForUpdate(ctx context.Context, ids []uint64) ([]inventory.ProductItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []inventory.ProductItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return items, nil
}

// FindAll lists lots matching the filter with the total count
func (r *GormProductItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.ProductItem, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&inventory.ProductItem{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []inventory.ProductItem
	if err := paginate(query, filter, ProductItemSortFields, "id").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormProductItemRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "stock_location":
			query = query.Where("stock_location = ?", value)
		}
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		query = query.Where("barcode LIKE ? OR imei LIKE ? OR batch_id LIKE ?", like, like, like)
	}
	return query
}

// Create inserts a new lot. A barcode or IMEI taken by a concurrent
// transaction surfaces as DuplicateIdentity.
func (r *GormProductItemRepository) Create(ctx context.Context, item *inventory.ProductItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isDuplicate(err) {
			id := item.Identity()
			return inventory.ErrDuplicateIdentity.WithDetail("barcode", id.Barcode).WithDetail("imei", id.IMEI)
		}
		return TranslateError(err)
	}
	return nil
}

// SaveWithLock persists the mutable columns of a lot, guarded by the
// version the aggregate had before its last mutation.
func (r *GormProductItemRepository) SaveWithLock(ctx context.Context, item *inventory.ProductItem) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.ProductItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"total_quantity":     item.TotalQuantity,
			"available_quantity": item.AvailableQuantity,
			"status":             item.Status,
			"stock_location":     item.StockLocation,
			"batch_id":           item.BatchID,
			"unit_id":            item.UnitID,
			"version":            item.Version,
			"updated_at":         item.UpdatedAt,
		})

	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithDetail("lot_id", item.ID)
	}
	return nil
}

// SumAvailableByProduct sums available quantity per product over every lot.
// USED lots are included since a drained lot can be topped up again.
func (r *GormProductItemRepository) SumAvailableByProduct(ctx context.Context) (map[uint64]decimal.Decimal, error) {
	var rows []struct {
		ProductID uint64
		Total     decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&inventory.ProductItem{}).
		Select("product_id, COALESCE(SUM(available_quantity), 0) AS total").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[uint64]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.ProductID] = row.Total
	}
	return sums, nil
}

var _ inventory.ProductItemRepository = (*GormProductItemRepository)(nil)
