package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, "LotCreated", "StockReceived")

		assert.Len(t, r.GetHandlers("LotCreated"), 1)
		assert.Len(t, r.GetHandlers("StockReceived"), 1)
		assert.Empty(t, r.GetHandlers("StockConsumed"))
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, "LotCreated")
		r.Register(h, "LotCreated")
		r.Register(h)
		r.Register(h)

		assert.Len(t, r.GetHandlers("LotCreated"), 1)
		assert.Len(t, r.GetHandlers("Other"), 1)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("type handlers come before wildcards", func(t *testing.T) {
		r := NewHandlerRegistry()
		typed := newTestHandler()
		wildcard := newTestHandler()
		r.Register(wildcard)
		r.Register(typed, "LotExhausted")

		got := r.GetHandlers("LotExhausted")
		assert.Len(t, got, 2)
		assert.Same(t, typed, got[0])
		assert.Same(t, wildcard, got[1])
	})

	t.Run("unregister drops empty types", func(t *testing.T) {
		r := NewHandlerRegistry()
		h1, h2 := newTestHandler(), newTestHandler()
		r.Register(h1, "LotCreated")
		r.Register(h2, "LotCreated", "LotRelocated")
		r.Register(h1)

		r.Unregister(h1)
		assert.Len(t, r.GetHandlers("LotCreated"), 1)
		r.Unregister(h2)
		assert.Empty(t, r.GetHandlers("LotCreated"))
		assert.Zero(t, r.Len())
		assert.NotContains(t, r.handlers, "LotRelocated")
	})
}
