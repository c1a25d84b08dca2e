package handler

import (
	"github.com/gin-gonic/gin"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// TransferHandler serves stock transfers
type TransferHandler struct {
	BaseHandler
	transfers *appinv.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transfers *appinv.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Create godoc
// @ID           createTransfer
// @Summary      Move a lot to another location
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body CreateTransferRequest true "Transfer"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, ok := h.dateField(c, "transfer_date", req.TransferDate)
	if !ok {
		return
	}

	result, err := h.transfers.CreateTransfer(c.Request.Context(), appinv.CreateTransferRequest{
		ProductItemID: req.ProductItemID,
		FromLocation:  req.FromLocation,
		ToLocation:    req.ToLocation,
		TransferBy:    req.TransferBy,
		Remarks:       req.Remarks,
		TransferDate:  date,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @ID           listTransfers
// @Summary      Transfer history, newest first
// @Tags         transfers
// @Produce      json
// @Param        page      query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	var q dto.PageRequest
	if !h.bindQuery(c, &q) {
		return
	}
	q = q.Normalize()
	page, err := h.transfers.ListTransfers(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]TransferResponse, len(page.Items))
	for i := range page.Items {
		items[i] = toTransferResponse(&page.Items[i])
	}
	pageResponse(c, shared.NewPaginated(items, page.Total, page.Page, page.PageSize))
}
