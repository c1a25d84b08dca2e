package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-7")
		c.Next()
	})
	r.Use(Recovery(l), RequestLogger(l))
	return r
}

func TestRequestLogger(t *testing.T) {
	t.Run("logs status and level by outcome", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		r := newTestRouter(zap.New(core))
		r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad?code=X", nil))

		logs := recorded.FilterMessage("request").All()
		require.Len(t, logs, 2)
		assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
		assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
		assert.Equal(t, "req-7", logs[1].ContextMap()["request_id"])
		assert.Equal(t, "code=X", logs[1].ContextMap()["query"])
	})

	t.Run("handlers see the request logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		r := newTestRouter(zap.New(core))
		r.GET("/inner", func(c *gin.Context) {
			FromContext(c.Request.Context()).Info("inside handler")
			c.Status(http.StatusNoContent)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/inner", nil))

		logs := recorded.FilterMessage("inside handler").All()
		require.Len(t, logs, 1)
		assert.Equal(t, "/inner", logs[0].ContextMap()["path"])
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
	assert.Equal(t, 1, recorded.FilterMessage("panic recovered").Len())
}
