package fleet

import "context"

// VehicleRepository reads vehicles and appends usage entries
type VehicleRepository interface {
	FindByID(ctx context.Context, id uint64) (*Vehicle, error)
	CreateUsage(ctx context.Context, usage *VehicleUsage) error
	FindUsageByReference(ctx context.Context, referenceType string, referenceID uint64) ([]VehicleUsage, error)
}
