package catalog

import "context"

// UnitRepository provides read access to the unit catalog
type UnitRepository interface {
	// FindAll returns every unit ordered by id
	FindAll(ctx context.Context) ([]Unit, error)
	// FindByID finds a unit by id
	FindByID(ctx context.Context, id uint64) (*Unit, error)
	// FindByIDs returns the units with the given ids keyed by id
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*Unit, error)
}

// ProductRepository provides read access to product masters
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*ProductMaster, error)
	FindAll(ctx context.Context) ([]ProductMaster, error)
	ExistsByID(ctx context.Context, id uint64) (bool, error)
	// FindWithThreshold returns products that define a positive min threshold
	FindWithThreshold(ctx context.Context) ([]ProductMaster, error)
}
