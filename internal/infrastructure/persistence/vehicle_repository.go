package persistence

import (
	"context"

	"github.com/stockledger/backend/internal/domain/fleet"
	"gorm.io/gorm"
)

// GormVehicleRepository implements VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID finds a vehicle by id
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uint64) (*fleet.Vehicle, error) {
	var v fleet.Vehicle
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &v, nil
}

// CreateUsage appends a usage entry
func (r *GormVehicleRepository) CreateUsage(ctx context.Context, usage *fleet.VehicleUsage) error {
	return TranslateError(r.db.WithContext(ctx).Create(usage).Error)
}

// FindUsageByReference lists the usage entries logged for a document
func (r *GormVehicleRepository) FindUsageByReference(ctx context.Context, referenceType string, referenceID uint64) ([]fleet.VehicleUsage, error) {
	var usages []fleet.VehicleUsage
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("id ASC").
		Find(&usages).Error
	if err != nil {
		return nil, err
	}
	return usages, nil
}

var _ fleet.VehicleRepository = (*GormVehicleRepository)(nil)
