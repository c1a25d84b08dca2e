package handler

import (
	"github.com/gin-gonic/gin"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// InventoryHandler serves lot lookups and the inward and outward registers
type InventoryHandler struct {
	BaseHandler
	inward  *appinv.InwardService
	outward *appinv.OutwardService
	query   *appinv.QueryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inward *appinv.InwardService, outward *appinv.OutwardService, query *appinv.QueryService) *InventoryHandler {
	return &InventoryHandler{inward: inward, outward: outward, query: query}
}

// Scan godoc
// @ID           scanLot
// @Summary      Find a lot by barcode or IMEI
// @Tags         inventory
// @Produce      json
// @Param        code query string true "Barcode or IMEI"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/scan [get]
func (h *InventoryHandler) Scan(c *gin.Context) {
	var q ScanQuery
	if !h.bindQuery(c, &q) {
		return
	}
	lot, err := h.query.ScanByCode(c.Request.Context(), q.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lot)
}

// ListItems godoc
// @ID           listLots
// @Summary      List stock lots
// @Tags         inventory
// @Produce      json
// @Param        status     query string false "IN_STOCK, USED, DAMAGED or RETURNED"
// @Param        product_id query int    false "Product"
// @Param        location   query string false "Stock location"
// @Param        page       query int    false "Page" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var q ListItemsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page := q.PageRequest.Normalize()
	lots, err := h.query.ListLots(c.Request.Context(), appinv.ListLotsFilter{
		Status:    q.Status,
		ProductID: q.ProductID,
		Location:  q.Location,
		Page:      page.Page,
		PageSize:  page.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageResponse(c, lots)
}

// GetItem godoc
// @ID           getLot
// @Summary      Get a stock lot
// @Tags         inventory
// @Produce      json
// @Param        id path int true "Lot ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/items/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	lot, err := h.query.GetLot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lot)
}

// CreateInward godoc
// @ID           createInward
// @Summary      Record an inward register
// @Description  Receives every line in one transaction. A line naming a known barcode or IMEI tops up that lot; otherwise a lot is created.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body CreateInwardRequest true "Inward register"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/inward [post]
func (h *InventoryHandler) CreateInward(c *gin.Context) {
	var req CreateInwardRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, ok := h.dateField(c, "inward_date", req.InwardDate)
	if !ok {
		return
	}

	lines := make([]appinv.InwardLineInput, len(req.Items))
	for i, item := range req.Items {
		lines[i] = item.toInput()
	}
	result, err := h.inward.CreateInward(c.Request.Context(), appinv.CreateInwardRequest{
		InwardDate:   date,
		PurchaseType: req.PurchaseType,
		ReceivedBy:   req.ReceivedBy,
		Remarks:      req.Remarks,
		Lines:        lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListInward godoc
// @ID           listInward
// @Summary      Inward history, newest first
// @Tags         inventory
// @Produce      json
// @Param        page      query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/inward [get]
func (h *InventoryHandler) ListInward(c *gin.Context) {
	var q dto.PageRequest
	if !h.bindQuery(c, &q) {
		return
	}
	q = q.Normalize()
	lines, err := h.query.InwardHistory(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageResponse(c, lines)
}

// CreateOutward godoc
// @ID           createOutward
// @Summary      Record an outward register
// @Description  Consumes every line in one transaction. A line asking for more than a lot holds fails the whole register.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body CreateOutwardRequest true "Outward register"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/outward [post]
func (h *InventoryHandler) CreateOutward(c *gin.Context) {
	var req CreateOutwardRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, ok := h.dateField(c, "outward_date", req.OutwardDate)
	if !ok {
		return
	}

	lines := make([]appinv.OutwardLineInput, len(req.Items))
	for i, item := range req.Items {
		lines[i] = item.toInput()
	}
	result, err := h.outward.CreateOutward(c.Request.Context(), appinv.CreateOutwardRequest{
		Header: inventory.OutwardHeader{
			Date:           date,
			VehicleID:      req.VehicleID,
			VehicleRegNo:   req.VehicleRegNo,
			VinNo:          req.VinNo,
			SalesCategory:  req.SalesCategory,
			InchargePerson: req.InchargePerson,
			Remarks:        req.Remarks,
		},
		Lines: lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListOutward godoc
// @ID           listOutward
// @Summary      Outward history, newest first
// @Tags         inventory
// @Produce      json
// @Param        page      query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/outward [get]
func (h *InventoryHandler) ListOutward(c *gin.Context) {
	var q dto.PageRequest
	if !h.bindQuery(c, &q) {
		return
	}
	q = q.Normalize()
	lines, err := h.query.OutwardHistory(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageResponse(c, lines)
}
