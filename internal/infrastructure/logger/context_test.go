package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		l := zap.NewExample()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("falls back to nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestFor(t *testing.T) {
	t.Run("adds request and user ids", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "42")

		For(ctx, zap.New(core)).Info("outward committed")

		entry := recorded.All()[0]
		fields := entry.ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "42", fields["user_id"])
		assert.NotContains(t, fields, "trace_id")
	})

	t.Run("adds trace correlation ids", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()
		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		For(ctx, zap.New(core)).Info("traced")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	})

	t.Run("nil base uses context logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithContext(context.Background(), zap.New(core))

		For(ctx, nil).Info("from ctx")

		assert.Equal(t, 1, recorded.Len())
	})
}
