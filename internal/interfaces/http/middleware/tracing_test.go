package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(RequestID(), Tracing("ledger-test", true), SpanAttributes(), func(c *gin.Context) {
		c.Set(JWTRoleIDKey, uint64(7))
		c.Next()
	})
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	testutil.PerformJSON(t, r, http.MethodGet, "/ok", nil, map[string]string{RequestIDHeader: "trace-req"})
	testutil.PerformJSON(t, r, http.MethodGet, "/boom", nil, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	attrs := attribute.NewSet(spans[0].Attributes()...)
	v, ok := attrs.Value("http.request_id")
	require.True(t, ok)
	assert.Equal(t, "trace-req", v.AsString())
	v, ok = attrs.Value("ledger.role_id")
	require.True(t, ok)
	assert.Equal(t, int64(7), v.AsInt64())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Tracing("ledger-test", false), SpanAttributes())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := testutil.PerformJSON(t, r, http.MethodGet, "/ok", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
