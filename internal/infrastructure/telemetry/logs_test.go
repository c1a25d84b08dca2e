package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingLogExporter struct {
	mu       sync.Mutex
	exported []string
}

func (e *recordingLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range records {
		e.exported = append(e.exported, records[i].Body().AsString())
	}
	return nil
}

func (e *recordingLogExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingLogExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingLogExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.exported...)
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	for _, cfg := range []config.TelemetryConfig{
		{Enabled: false, LogsEnabled: true},
		{Enabled: true, LogsEnabled: false},
	} {
		lp, err := NewLoggerProvider(context.Background(), cfg, nil)
		require.NoError(t, err)
		assert.False(t, lp.IsEnabled())

		base := zap.NewNop()
		assert.Same(t, base, lp.Bridge(base, "ledger", zapcore.InfoLevel))
		assert.NoError(t, lp.ForceFlush(context.Background()))
		assert.NoError(t, lp.Shutdown(context.Background()))
	}
}

func TestLoggerProvider_Bridge(t *testing.T) {
	exporter := &recordingLogExporter{}
	lp, err := newLoggerProvider("ledger-test", sdklog.NewSimpleProcessor(exporter), zap.NewNop())
	require.NoError(t, err)
	require.True(t, lp.IsEnabled())

	core, local := observer.New(zapcore.DebugLevel)
	log := lp.Bridge(zap.New(core), "ledger-test", zapcore.InfoLevel)

	log.Debug("lock acquired")
	log.Info("inward applied", zap.Uint64("inward_id", 7))
	log.With(zap.String("file", "in.csv")).Warn("archive failed")
	require.NoError(t, lp.ForceFlush(context.Background()))

	assert.Equal(t, 3, local.Len(), "local output keeps every level")
	assert.Equal(t, []string{"inward applied", "archive failed"}, exporter.bodies())

	require.NoError(t, lp.Shutdown(context.Background()))
}
