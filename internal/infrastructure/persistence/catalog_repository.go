package persistence

import (
	"context"

	"github.com/stockledger/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormUnitRepository implements UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindAll returns every unit ordered by id
func (r *GormUnitRepository) FindAll(ctx context.Context) ([]catalog.Unit, error) {
	var units []catalog.Unit
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// FindByID finds a unit by id
func (r *GormUnitRepository) FindByID(ctx context.Context, id uint64) (*catalog.Unit, error) {
	var unit catalog.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &unit, nil
}

// FindByIDs returns the units with the given ids keyed by id
func (r *GormUnitRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*catalog.Unit, error) {
	out := make(map[uint64]*catalog.Unit, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var units []catalog.Unit
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&units).Error; err != nil {
		return nil, err
	}
	for i := range units {
		out[units[i].ID] = &units[i]
	}
	return out, nil
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by id
func (r *GormProductRepository) FindByID(ctx context.Context, id uint64) (*catalog.ProductMaster, error) {
	var p catalog.ProductMaster
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &p, nil
}

// FindAll returns every product ordered by name
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.ProductMaster, error) {
	var products []catalog.ProductMaster
	if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ExistsByID reports whether a product exists
func (r *GormProductRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.ProductMaster{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindWithThreshold returns products that define a positive min threshold
func (r *GormProductRepository) FindWithThreshold(ctx context.Context) ([]catalog.ProductMaster, error) {
	var products []catalog.ProductMaster
	if err := r.db.WithContext(ctx).Where("min_threshold > 0").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

var (
	_ catalog.UnitRepository    = (*GormUnitRepository)(nil)
	_ catalog.ProductRepository = (*GormProductRepository)(nil)
)
