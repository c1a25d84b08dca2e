package persistence

import (
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/fleet"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order. Production schemas
// come from the SQL migrations; this list serves AutoMigrate in tests.
func Models() []any {
	return []any{
		&catalog.Unit{},
		&catalog.ProductMaster{},
		&fleet.Vehicle{},
		&fleet.VehicleUsage{},
		&identity.Role{},
		&identity.RolePrivilege{},
		&inventory.ProductItem{},
		&inventory.InwardRegister{},
		&inventory.InwardItem{},
		&inventory.OutwardRegister{},
		&inventory.OutwardItem{},
		&inventory.StockTransfer{},
	}
}

// AutoMigrate creates the ledger tables from the models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
