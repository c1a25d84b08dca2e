package telemetry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

// collect returns the metric with the given name from a fresh collection
func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func sumInt(m metricdata.Metrics) int64 {
	var total int64
	for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
		total += dp.Value
	}
	return total
}

func sumFloat(m metricdata.Metrics) float64 {
	var total float64
	for _, dp := range m.Data.(metricdata.Sum[float64]).DataPoints {
		total += dp.Value
	}
	return total
}

func lot(id uint64, total, available string) *inventory.ProductItem {
	p := &inventory.ProductItem{
		ProductID:         5,
		TotalQuantity:     decimal.RequireFromString(total),
		AvailableQuantity: decimal.RequireFromString(available),
		StockLocation:     "RACK-A",
	}
	p.ID = id
	return p
}

func TestNewLedgerMetrics_RequiresMeter(t *testing.T) {
	_, err := NewLedgerMetrics(LedgerMetricsConfig{})
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestLedgerMetrics_Handle(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewLedgerMetrics(LedgerMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)
	ctx := context.Background()

	created := lot(1, "15", "15")
	require.NoError(t, m.Handle(ctx, inventory.NewLotCreatedEvent(created)))
	require.NoError(t, m.Handle(ctx, inventory.NewStockReceivedEvent(lot(1, "20", "20"), decimal.NewFromInt(5))))
	require.NoError(t, m.Handle(ctx, inventory.NewStockConsumedEvent(lot(1, "20", "7.5"), decimal.RequireFromString("12.5"))))
	require.NoError(t, m.Handle(ctx, inventory.NewLotExhaustedEvent(lot(1, "20", "0"))))
	require.NoError(t, m.Handle(ctx, inventory.NewLotRelocatedEvent(lot(1, "20", "0"), "DEFAULT")))

	metric, ok := collect(t, reader, "ledger_lots_created_total")
	require.True(t, ok)
	assert.Equal(t, int64(1), sumInt(metric))

	metric, ok = collect(t, reader, "ledger_quantity_received_total")
	require.True(t, ok)
	assert.InDelta(t, 20.0, sumFloat(metric), 1e-9)

	metric, ok = collect(t, reader, "ledger_quantity_consumed_total")
	require.True(t, ok)
	assert.InDelta(t, 12.5, sumFloat(metric), 1e-9)

	metric, ok = collect(t, reader, "ledger_lots_exhausted_total")
	require.True(t, ok)
	assert.Equal(t, int64(1), sumInt(metric))

	metric, ok = collect(t, reader, "ledger_lots_relocated_total")
	require.True(t, ok)
	assert.Equal(t, int64(1), sumInt(metric))

	assert.Len(t, m.EventTypes(), 5)
}

type countingLowStock struct {
	calls atomic.Int32
	value int64
	err   error
}

func (c *countingLowStock) CountLowStock(context.Context) (int64, error) {
	c.calls.Add(1)
	return c.value, c.err
}

func TestLedgerMetrics_LowStockGauge(t *testing.T) {
	t.Run("samples on start and on every tick", func(t *testing.T) {
		reader, provider := newTestMeter(t)
		source := &countingLowStock{value: 3}
		m, err := NewLedgerMetrics(LedgerMetricsConfig{
			Meter:           provider.Meter("test"),
			LowStock:        source,
			CollectInterval: 10 * time.Millisecond,
		})
		require.NoError(t, err)

		m.Start(context.Background())
		require.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
		m.Stop()

		metric, ok := collect(t, reader, "ledger_low_stock_products")
		require.True(t, ok)
		points := metric.Data.(metricdata.Gauge[int64]).DataPoints
		require.Len(t, points, 1)
		assert.Equal(t, int64(3), points[0].Value)
	})

	t.Run("errors leave the gauge unset", func(t *testing.T) {
		reader, provider := newTestMeter(t)
		source := &countingLowStock{err: errors.New("db down")}
		m, err := NewLedgerMetrics(LedgerMetricsConfig{Meter: provider.Meter("test"), LowStock: source})
		require.NoError(t, err)

		m.Start(context.Background())
		require.Eventually(t, func() bool { return source.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
		m.Stop()

		_, ok := collect(t, reader, "ledger_low_stock_products")
		assert.False(t, ok)
	})

	t.Run("no source means no collector", func(t *testing.T) {
		_, provider := newTestMeter(t)
		m, err := NewLedgerMetrics(LedgerMetricsConfig{Meter: provider.Meter("test")})
		require.NoError(t, err)
		m.Start(context.Background())
		m.Stop()
	})
}
