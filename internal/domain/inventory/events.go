package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// AggregateTypeProductItem is the aggregate type of stock lot events
const AggregateTypeProductItem = "ProductItem"

// Event type constants
const (
	EventTypeLotCreated    = "LotCreated"
	EventTypeStockReceived = "StockReceived"
	EventTypeStockConsumed = "StockConsumed"
	EventTypeLotExhausted  = "LotExhausted"
	EventTypeLotRelocated  = "LotRelocated"
)

// LotCreatedEvent is raised when a new lot is registered by an inward
type LotCreatedEvent struct {
	shared.BaseDomainEvent
	LotID     uint64          `json:"lot_id"`
	ProductID uint64          `json:"product_id"`
	Barcode   string          `json:"barcode,omitempty"`
	IMEI      string          `json:"imei,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Location  string          `json:"location"`
}

// NewLotCreatedEvent creates a LotCreatedEvent
func NewLotCreatedEvent(p *ProductItem) *LotCreatedEvent {
	return &LotCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotCreated, AggregateTypeProductItem, p.ID),
		LotID:           p.ID,
		ProductID:       p.ProductID,
		Barcode:         deref(p.Barcode),
		IMEI:            deref(p.IMEI),
		Quantity:        p.TotalQuantity,
		Location:        p.StockLocation,
	}
}

// StockReceivedEvent is raised when an existing lot is topped up
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	LotID     uint64          `json:"lot_id"`
	ProductID uint64          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Available decimal.Decimal `json:"available"`
}

// NewStockReceivedEvent creates a StockReceivedEvent
func NewStockReceivedEvent(p *ProductItem, quantity decimal.Decimal) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeProductItem, p.ID),
		LotID:           p.ID,
		ProductID:       p.ProductID,
		Quantity:        quantity,
		Available:       p.AvailableQuantity,
	}
}

// StockConsumedEvent is raised when quantity leaves a lot through an outward
type StockConsumedEvent struct {
	shared.BaseDomainEvent
	LotID     uint64          `json:"lot_id"`
	ProductID uint64          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Available decimal.Decimal `json:"available"`
}

// NewStockConsumedEvent creates a StockConsumedEvent
func NewStockConsumedEvent(p *ProductItem, quantity decimal.Decimal) *StockConsumedEvent {
	return &StockConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockConsumed, AggregateTypeProductItem, p.ID),
		LotID:           p.ID,
		ProductID:       p.ProductID,
		Quantity:        quantity,
		Available:       p.AvailableQuantity,
	}
}

// LotExhaustedEvent is raised when a lot is drained to zero and becomes USED
type LotExhaustedEvent struct {
	shared.BaseDomainEvent
	LotID     uint64 `json:"lot_id"`
	ProductID uint64 `json:"product_id"`
}

// NewLotExhaustedEvent creates a LotExhaustedEvent
func NewLotExhaustedEvent(p *ProductItem) *LotExhaustedEvent {
	return &LotExhaustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotExhausted, AggregateTypeProductItem, p.ID),
		LotID:           p.ID,
		ProductID:       p.ProductID,
	}
}

// LotRelocatedEvent is raised when a lot changes location
type LotRelocatedEvent struct {
	shared.BaseDomainEvent
	LotID        uint64 `json:"lot_id"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
}

// NewLotRelocatedEvent creates a LotRelocatedEvent
func NewLotRelocatedEvent(p *ProductItem, from string) *LotRelocatedEvent {
	return &LotRelocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotRelocated, AggregateTypeProductItem, p.ID),
		LotID:           p.ID,
		FromLocation:    from,
		ToLocation:      p.StockLocation,
	}
}
