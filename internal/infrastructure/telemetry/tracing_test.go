package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func setGlobalTracerProvider(tp trace.TracerProvider) trace.TracerProvider {
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	return prev
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "ledger", "create_outward",
		WithAttribute(SpanAttrUnitPolicy, "convert"),
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttribute(span, SpanAttrRegisterID, uint64(42))
	SetAttribute(span, SpanAttrLineCount, 3)
	RecordError(span, errors.New("insufficient stock"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "ledger.create_outward", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Contains(t, got.Attributes(), attribute.String(SpanAttrUnitPolicy, "convert"))
	assert.Contains(t, got.Attributes(), attribute.Int64(SpanAttrRegisterID, 42))
	assert.Contains(t, got.Attributes(), attribute.Int(SpanAttrLineCount, 3))
	assert.Len(t, got.Events(), 1)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

type stringer struct{}

func (stringer) String() string { return "lot-7" }

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.String("k", "v"), toAttribute("k", "v"))
	assert.Equal(t, attribute.Bool("k", true), toAttribute("k", true))
	assert.Equal(t, attribute.Float64("k", 1.5), toAttribute("k", 1.5))
	assert.Equal(t, attribute.StringSlice("k", []string{"a"}), toAttribute("k", []string{"a"}))
	assert.Equal(t, attribute.String("k", "lot-7"), toAttribute("k", stringer{}))
	assert.Equal(t, attribute.String("k", "[1 2]"), toAttribute("k", []uint8{1, 2}))
}
