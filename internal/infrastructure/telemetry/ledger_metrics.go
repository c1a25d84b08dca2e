package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when LedgerMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// LowStockCounter reports how many products currently sit at or below their
// minimum threshold
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// LedgerMetrics turns committed ledger events into counters and samples the
// low stock gauge on an interval. It subscribes to the event bus like any
// other handler.
type LedgerMetrics struct {
	logger *zap.Logger

	lotsCreated      *Counter
	lotsExhausted    *Counter
	lotsRelocated    *Counter
	quantityReceived *FloatCounter
	quantityConsumed *FloatCounter
	lowStockProducts *Gauge

	lowStock LowStockCounter
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// LedgerMetricsConfig holds configuration for LedgerMetrics
type LedgerMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	LowStock        LowStockCounter // optional
	CollectInterval time.Duration   // default 1 minute
}

// NewLedgerMetrics creates the ledger instruments
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	m := &LedgerMetrics{
		logger:   cfg.Logger,
		lowStock: cfg.LowStock,
		interval: cfg.CollectInterval,
		stopCh:   make(chan struct{}),
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.interval <= 0 {
		m.interval = time.Minute
	}

	var err error
	if m.lotsCreated, err = NewCounter(cfg.Meter, "ledger_lots_created_total", "Stock lots created by inward registers", "{lots}"); err != nil {
		return nil, err
	}
	if m.lotsExhausted, err = NewCounter(cfg.Meter, "ledger_lots_exhausted_total", "Stock lots drained to zero", "{lots}"); err != nil {
		return nil, err
	}
	if m.lotsRelocated, err = NewCounter(cfg.Meter, "ledger_lots_relocated_total", "Stock lots moved between locations", "{lots}"); err != nil {
		return nil, err
	}
	if m.quantityReceived, err = NewFloatCounter(cfg.Meter, "ledger_quantity_received_total", "Quantity received into stock lots", "{units}"); err != nil {
		return nil, err
	}
	if m.quantityConsumed, err = NewFloatCounter(cfg.Meter, "ledger_quantity_consumed_total", "Quantity consumed from stock lots", "{units}"); err != nil {
		return nil, err
	}
	if m.lowStockProducts, err = NewGauge(cfg.Meter, "ledger_low_stock_products", "Products at or below their minimum threshold", "{products}"); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *LedgerMetrics) EventTypes() []string {
	return []string{
		inventory.EventTypeLotCreated,
		inventory.EventTypeStockReceived,
		inventory.EventTypeStockConsumed,
		inventory.EventTypeLotExhausted,
		inventory.EventTypeLotRelocated,
	}
}

// Handle implements shared.EventHandler
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.LotCreatedEvent:
		m.lotsCreated.Inc(ctx, AttrProductID.Int64(int64(e.ProductID)))
		m.quantityReceived.Add(ctx, e.Quantity.InexactFloat64(), AttrProductID.Int64(int64(e.ProductID)))
	case *inventory.StockReceivedEvent:
		m.quantityReceived.Add(ctx, e.Quantity.InexactFloat64(), AttrProductID.Int64(int64(e.ProductID)))
	case *inventory.StockConsumedEvent:
		m.quantityConsumed.Add(ctx, e.Quantity.InexactFloat64(), AttrProductID.Int64(int64(e.ProductID)))
	case *inventory.LotExhaustedEvent:
		m.lotsExhausted.Inc(ctx, AttrProductID.Int64(int64(e.ProductID)))
	case *inventory.LotRelocatedEvent:
		m.lotsRelocated.Inc(ctx, AttrToLocation.String(e.ToLocation))
	}
	return nil
}

// Start samples the low stock gauge until Stop is called. It is a no-op
// without a LowStockCounter.
func (m *LedgerMetrics) Start(ctx context.Context) {
	if m.lowStock == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.collect(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.collect(ctx)
			}
		}
	}()
}

func (m *LedgerMetrics) collect(ctx context.Context) {
	n, err := m.lowStock.CountLowStock(ctx)
	if err != nil {
		m.logger.Warn("failed to collect low stock count", zap.Error(err))
		return
	}
	m.lowStockProducts.Record(ctx, n)
}

// Stop ends periodic collection and waits for it to exit
func (m *LedgerMetrics) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

var _ shared.EventHandler = (*LedgerMetrics)(nil)
