package persistence

import (
	"context"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInwardRepository implements InwardRepository using GORM
type GormInwardRepository struct {
	db *gorm.DB
}

// NewGormInwardRepository creates a new GormInwardRepository
func NewGormInwardRepository(db *gorm.DB) *GormInwardRepository {
	return &GormInwardRepository{db: db}
}

// CreateRegister inserts the register header only; lines go through AddItem
func (r *GormInwardRepository) CreateRegister(ctx context.Context, register *inventory.InwardRegister) error {
	return TranslateError(r.db.WithContext(ctx).Omit("Items").Create(register).Error)
}

// AddItem appends one line to a register
func (r *GormInwardRepository) AddItem(ctx context.Context, item *inventory.InwardItem) error {
	return TranslateError(r.db.WithContext(ctx).Create(item).Error)
}

// FindByID loads a register with its lines
func (r *GormInwardRepository) FindByID(ctx context.Context, id uint64) (*inventory.InwardRegister, error) {
	var register inventory.InwardRegister
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&register, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &register, nil
}

// ListLines lists inward lines joined with their header and lot, newest first
func (r *GormInwardRepository) ListLines(ctx context.Context, filter shared.Filter) ([]inventory.InwardLine, int64, error) {
	base := r.db.WithContext(ctx).
		Table("inward_items AS ii").
		Joins("JOIN inward_registers ir ON ir.id = ii.inward_id").
		Joins("JOIN product_items pi ON pi.id = ii.product_item_id")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lines []inventory.InwardLine
	query := base.Select(`ii.id AS item_id, ii.inward_id, ii.product_item_id, pi.product_id,
		pi.barcode, pi.imei, ii.quantity_received, ii.unit_id,
		ir.inward_date, ir.purchase_type, ir.received_by, ir.remarks`).
		Order("ir.inward_date DESC").Order("ii.id DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Scan(&lines).Error; err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

// GormOutwardRepository implements OutwardRepository using GORM
type GormOutwardRepository struct {
	db *gorm.DB
}

// NewGormOutwardRepository creates a new GormOutwardRepository
func NewGormOutwardRepository(db *gorm.DB) *GormOutwardRepository {
	return &GormOutwardRepository{db: db}
}

// CreateRegister inserts the register header only; lines go through AddItem
func (r *GormOutwardRepository) CreateRegister(ctx context.Context, register *inventory.OutwardRegister) error {
	return TranslateError(r.db.WithContext(ctx).Omit("Items").Create(register).Error)
}

// AddItem appends one line to a register
func (r *GormOutwardRepository) AddItem(ctx context.Context, item *inventory.OutwardItem) error {
	return TranslateError(r.db.WithContext(ctx).Create(item).Error)
}

// FindByID loads a register with its lines
func (r *GormOutwardRepository) FindByID(ctx context.Context, id uint64) (*inventory.OutwardRegister, error) {
	var register inventory.OutwardRegister
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&register, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &register, nil
}

// ListLines lists outward lines joined with their header and lot, newest first
func (r *GormOutwardRepository) ListLines(ctx context.Context, filter shared.Filter) ([]inventory.OutwardLine, int64, error) {
	base := r.db.WithContext(ctx).
		Table("outward_items AS oi").
		Joins("JOIN outward_registers orr ON orr.id = oi.outward_id").
		Joins("JOIN product_items pi ON pi.id = oi.product_item_id")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lines []inventory.OutwardLine
	query := base.Select(`oi.id AS item_id, oi.outward_id, oi.product_item_id, pi.product_id,
		pi.barcode, pi.imei, oi.quantity_used, oi.unit_id,
		orr.outward_date, orr.vehicle_id, orr.vehicle_reg_no, orr.sales_category,
		orr.incharge_person, orr.remarks`).
		Order("orr.outward_date DESC").Order("oi.id DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Scan(&lines).Error; err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

// GormStockTransferRepository implements StockTransferRepository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// Create records a transfer
func (r *GormStockTransferRepository) Create(ctx context.Context, transfer *inventory.StockTransfer) error {
	return TranslateError(r.db.WithContext(ctx).Create(transfer).Error)
}

// FindAll lists transfers with the total count
func (r *GormStockTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockTransfer, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockTransfer{})
	if v, ok := filter.Filters["product_item_id"]; ok {
		query = query.Where("product_item_id = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transfers []inventory.StockTransfer
	if err := paginate(query, filter, TransferSortFields, "id").Find(&transfers).Error; err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}

var (
	_ inventory.InwardRepository        = (*GormInwardRepository)(nil)
	_ inventory.OutwardRepository       = (*GormOutwardRepository)(nil)
	_ inventory.StockTransferRepository = (*GormStockTransferRepository)(nil)
)
