package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// DefaultLocation is used for lots received without an explicit location.
const DefaultLocation = "DEFAULT"

// LotStatus is the lifecycle state of a stock lot
type LotStatus string

const (
	LotStatusInStock  LotStatus = "IN_STOCK"
	LotStatusUsed     LotStatus = "USED"
	LotStatusDamaged  LotStatus = "DAMAGED"
	LotStatusReturned LotStatus = "RETURNED"
)

// IsValid reports whether the status is a known value
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusInStock, LotStatusUsed, LotStatusDamaged, LotStatusReturned:
		return true
	}
	return false
}

// ProductItem is a physical stock lot: a roll, sheet or serialized unit of a
// product. It is the aggregate root for every quantity mutation in the ledger.
//
// TotalQuantity only grows. AvailableQuantity grows on receipt and shrinks on
// consumption, and 0 <= AvailableQuantity <= TotalQuantity always holds.
// Once the lot is drained to exactly zero its status becomes USED and stays
// USED even if it is topped up later.
type ProductItem struct {
	shared.BaseAggregateRoot
	ProductID         uint64          `gorm:"not null;index"`
	Barcode           *string         `gorm:"type:varchar(100);uniqueIndex"`
	IMEI              *string         `gorm:"column:imei;type:varchar(100);uniqueIndex"`
	BatchID           *string         `gorm:"type:varchar(100)"`
	UnitID            *uint64         `gorm:"index"`
	TotalQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockLocation     string          `gorm:"type:varchar(100);not null;default:'DEFAULT'"`
	Status            LotStatus       `gorm:"type:varchar(20);not null;default:'IN_STOCK';index"`
}

// TableName returns the table name for GORM
func (ProductItem) TableName() string {
	return "product_items"
}

// NewLot carries the attributes of a lot about to be created
type NewLot struct {
	ProductID uint64
	Identity  LotIdentity
	BatchID   string
	Location  string
	Quantity  decimal.Decimal
	UnitID    *uint64
}

// NewProductItem creates a new lot holding the full received quantity.
// The lot has no ID until it is persisted; call RecordCreated afterwards so
// that the creation event carries the assigned ID.
func NewProductItem(newLot NewLot) (*ProductItem, error) {
	if newLot.ProductID == 0 {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !newLot.Quantity.IsPositive() {
		return nil, NewInvalidQuantityError(newLot.Quantity)
	}

	location := trimOrDefault(newLot.Location, DefaultLocation)
	item := &ProductItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         newLot.ProductID,
		Barcode:           newLot.Identity.BarcodePtr(),
		IMEI:              newLot.Identity.IMEIPtr(),
		BatchID:           optionalString(newLot.BatchID),
		UnitID:            newLot.UnitID,
		TotalQuantity:     newLot.Quantity,
		AvailableQuantity: newLot.Quantity,
		StockLocation:     location,
		Status:            LotStatusInStock,
	}
	return item, nil
}

// RecordCreated emits the creation event once the lot has been assigned an ID.
func (p *ProductItem) RecordCreated() {
	p.Raise(NewLotCreatedEvent(p))
}

// Identity returns the lot's barcode/IMEI identity
func (p *ProductItem) Identity() LotIdentity {
	return NewLotIdentity(deref(p.Barcode), deref(p.IMEI))
}

// Receive tops the lot up with a positive quantity. A non-empty batch or
// location overwrites the stored value.
func (p *ProductItem) Receive(quantity decimal.Decimal, batchID, location string) error {
	if !quantity.IsPositive() {
		return NewInvalidQuantityError(quantity)
	}

	p.TotalQuantity = p.TotalQuantity.Add(quantity)
	p.AvailableQuantity = p.AvailableQuantity.Add(quantity)
	if b := optionalString(batchID); b != nil {
		p.BatchID = b
	}
	if l := optionalString(location); l != nil {
		p.StockLocation = *l
	}
	p.touch()

	p.Raise(NewStockReceivedEvent(p, quantity))
	return p.CheckInvariant()
}

// Consume removes a positive quantity from the available balance.
// Draining the lot to exactly zero marks it USED.
func (p *ProductItem) Consume(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return NewInvalidQuantityError(quantity)
	}
	if quantity.GreaterThan(p.AvailableQuantity) {
		return NewInsufficientStockError(p, quantity)
	}

	p.AvailableQuantity = p.AvailableQuantity.Sub(quantity)
	p.touch()
	p.Raise(NewStockConsumedEvent(p, quantity))

	if p.AvailableQuantity.IsZero() {
		p.Status = LotStatusUsed
		p.Raise(NewLotExhaustedEvent(p))
	}
	return p.CheckInvariant()
}

// Relocate moves the lot to another location. Quantities are untouched.
func (p *ProductItem) Relocate(location string) error {
	l := optionalString(location)
	if l == nil {
		return shared.NewDomainError("INVALID_INPUT", "Target location cannot be empty")
	}

	from := p.StockLocation
	p.StockLocation = *l
	p.touch()
	p.Raise(NewLotRelocatedEvent(p, from))
	return nil
}

// CheckInvariant verifies 0 <= available <= total
func (p *ProductItem) CheckInvariant() error {
	if p.AvailableQuantity.IsNegative() || p.AvailableQuantity.GreaterThan(p.TotalQuantity) {
		return shared.NewDomainErrorWithDetails("INVARIANT_VIOLATION",
			"Lot balance out of range",
			map[string]any{
				"lot_id":    p.ID,
				"available": p.AvailableQuantity.String(),
				"total":     p.TotalQuantity.String(),
			})
	}
	return nil
}

// IsExhausted reports whether nothing is left to consume
func (p *ProductItem) IsExhausted() bool {
	return p.AvailableQuantity.IsZero()
}

func (p *ProductItem) touch() {
	p.UpdatedAt = time.Now()
	p.BumpVersion()
}
