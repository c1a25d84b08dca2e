package inventory

import (
	"context"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/fleet"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the ledger repositories.
// All repository operations performed inside Execute belong to one database
// transaction and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction. A returned error, a
	// panic or a cancelled context rolls the transaction back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to the current transaction.
//
// Lots is the only writer of lot balances. Inwards, Outwards and Transfers
// are append-only registers. Products and Vehicles are read for validation,
// except for the vehicle usage log which is appended together with an outward.
type TransactionalRepositories interface {
	Lots() inventory.ProductItemRepository
	Inwards() inventory.InwardRepository
	Outwards() inventory.OutwardRepository
	Transfers() inventory.StockTransferRepository
	Products() catalog.ProductRepository
	Vehicles() fleet.VehicleRepository
}
