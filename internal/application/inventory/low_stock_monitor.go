package inventory

import (
	"context"
	"errors"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockNotifier receives products that dropped to or below their threshold
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, entry LowStockEntry)
}

// LowStockMonitor re-evaluates a product's threshold whenever one of its
// lots is drawn down.
type LowStockMonitor struct {
	lots     inventory.ProductItemRepository
	products catalog.ProductRepository
	notifier LowStockNotifier
	logger   *zap.Logger
}

// NewLowStockMonitor creates a LowStockMonitor. notifier may be nil, in which
// case low stock is only logged.
func NewLowStockMonitor(lots inventory.ProductItemRepository, products catalog.ProductRepository, notifier LowStockNotifier, logger *zap.Logger) *LowStockMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockMonitor{lots: lots, products: products, notifier: notifier, logger: logger}
}

// EventTypes implements shared.EventHandler
func (m *LowStockMonitor) EventTypes() []string {
	return []string{inventory.EventTypeStockConsumed, inventory.EventTypeLotExhausted}
}

// Handle implements shared.EventHandler
func (m *LowStockMonitor) Handle(ctx context.Context, event shared.DomainEvent) error {
	var productID uint64
	switch e := event.(type) {
	case *inventory.StockConsumedEvent:
		productID = e.ProductID
	case *inventory.LotExhaustedEvent:
		productID = e.ProductID
	default:
		return nil
	}

	product, err := m.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if !product.MinThreshold.IsPositive() {
		return nil
	}

	sums, err := m.lots.SumAvailableByProduct(ctx)
	if err != nil {
		return err
	}
	available := sums[productID]
	if !product.IsLow(available) {
		return nil
	}

	entry := LowStockEntry{
		ProductID:    product.ID,
		ProductName:  product.Name,
		Available:    available,
		MinThreshold: product.MinThreshold,
	}
	m.logger.Warn("product at or below min threshold",
		zap.Uint64("product_id", entry.ProductID),
		zap.String("product", entry.ProductName),
		zap.String("available", entry.Available.String()),
		zap.String("threshold", entry.MinThreshold.String()),
	)
	if m.notifier != nil {
		m.notifier.NotifyLowStock(ctx, entry)
	}
	return nil
}
