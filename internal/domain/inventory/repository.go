package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ProductItemRepository defines persistence for stock lots.
// Finders return shared.ErrNotFound when nothing matches.
type ProductItemRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uint64) (*ProductItem, error)

	// FindByBarcode finds the lot carrying the barcode
	FindByBarcode(ctx context.Context, barcode string) (*ProductItem, error)

	// FindByIMEI finds the lot carrying the IMEI
	FindByIMEI(ctx context.Context, imei string) (*ProductItem, error)

	// FindByCode finds a lot whose barcode or IMEI equals code (scanner lookup)
	FindByCode(ctx context.Context, code string) (*ProductItem, error)

	// FindByIDsForUpdate loads and row-locks the lots in ascending ID order.
	// It must run inside a transaction.
	FindByIDsForUpdate(ctx context.Context, ids []uint64) ([]ProductItem, error)

	// FindAll lists lots matching the filter with the total count
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductItem, int64, error)

	// Create inserts a new lot and assigns its ID
	Create(ctx context.Context, item *ProductItem) error

	// SaveWithLock persists balance, status and location changes guarded by
	// the version the aggregate was loaded with
	SaveWithLock(ctx context.Context, item *ProductItem) error

	// SumAvailableByProduct sums available quantity of all lots per product
	SumAvailableByProduct(ctx context.Context) (map[uint64]decimal.Decimal, error)
}

// InwardRepository persists inward registers and their lines
type InwardRepository interface {
	CreateRegister(ctx context.Context, register *InwardRegister) error
	AddItem(ctx context.Context, item *InwardItem) error
	FindByID(ctx context.Context, id uint64) (*InwardRegister, error)
	ListLines(ctx context.Context, filter shared.Filter) ([]InwardLine, int64, error)
}

// OutwardRepository persists outward registers and their lines
type OutwardRepository interface {
	CreateRegister(ctx context.Context, register *OutwardRegister) error
	AddItem(ctx context.Context, item *OutwardItem) error
	FindByID(ctx context.Context, id uint64) (*OutwardRegister, error)
	ListLines(ctx context.Context, filter shared.Filter) ([]OutwardLine, int64, error)
}

// StockTransferRepository persists stock transfers
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *StockTransfer) error
	FindAll(ctx context.Context, filter shared.Filter) ([]StockTransfer, int64, error)
}

// InwardLine is a read model: one inward line flattened with its register header
type InwardLine struct {
	ItemID           uint64          `json:"item_id"`
	InwardID         uint64          `json:"inward_id"`
	ProductItemID    uint64          `json:"product_item_id"`
	ProductID        uint64          `json:"product_id"`
	Barcode          *string         `json:"barcode,omitempty"`
	IMEI             *string         `json:"imei,omitempty"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitID           *uint64         `json:"unit_id,omitempty"`
	InwardDate       time.Time       `json:"inward_date"`
	PurchaseType     string          `json:"purchase_type"`
	ReceivedBy       string          `json:"received_by"`
	Remarks          string          `json:"remarks"`
}

// OutwardLine is a read model: one outward line flattened with its register header
type OutwardLine struct {
	ItemID         uint64          `json:"item_id"`
	OutwardID      uint64          `json:"outward_id"`
	ProductItemID  uint64          `json:"product_item_id"`
	ProductID      uint64          `json:"product_id"`
	Barcode        *string         `json:"barcode,omitempty"`
	IMEI           *string         `json:"imei,omitempty"`
	QuantityUsed   decimal.Decimal `json:"quantity_used"`
	UnitID         *uint64         `json:"unit_id,omitempty"`
	OutwardDate    time.Time       `json:"outward_date"`
	VehicleID      *uint64         `json:"vehicle_id,omitempty"`
	VehicleRegNo   string          `json:"vehicle_reg_no"`
	SalesCategory  string          `json:"sales_category"`
	InchargePerson string          `json:"incharge_person"`
	Remarks        string          `json:"remarks"`
}
