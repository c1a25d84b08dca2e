package handler

import (
	"github.com/gin-gonic/gin"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	appinv "github.com/stockledger/backend/internal/application/inventory"
)

// CatalogHandler serves the read-only unit and product catalog
type CatalogHandler struct {
	BaseHandler
	catalog *appcatalog.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *appcatalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Units godoc
// @ID           listUnits
// @Summary      List units of measure
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /catalog/units [get]
func (h *CatalogHandler) Units(c *gin.Context) {
	units, err := h.catalog.ListUnits(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}

// Snapshot godoc
// @ID           catalogSnapshot
// @Summary      Values offered by upload templates
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /catalog/snapshot [get]
func (h *CatalogHandler) Snapshot(c *gin.Context) {
	snap, err := h.catalog.Snapshot(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snap)
}

// AnalyticsHandler serves stock signals derived from the ledger
type AnalyticsHandler struct {
	BaseHandler
	query *appinv.QueryService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(query *appinv.QueryService) *AnalyticsHandler {
	return &AnalyticsHandler{query: query}
}

// LowStock godoc
// @ID           lowStock
// @Summary      Products at or below their minimum threshold
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /analytics/low-stock [get]
func (h *AnalyticsHandler) LowStock(c *gin.Context) {
	entries, err := h.query.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if entries == nil {
		entries = []appinv.LowStockEntry{}
	}
	h.Success(c, entries)
}
