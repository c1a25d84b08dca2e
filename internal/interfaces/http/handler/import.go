package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	importapp "github.com/stockledger/backend/internal/application/import"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	sheetimport "github.com/stockledger/backend/internal/infrastructure/import"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// UploadFormField is the multipart field carrying the sheet
const UploadFormField = "file"

// ImportHandler applies uploaded CSV and Excel sheets as registers
type ImportHandler struct {
	BaseHandler
	imports  *importapp.BulkImportService
	maxBytes int64
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(imports *importapp.BulkImportService, maxBytes int64) *ImportHandler {
	return &ImportHandler{imports: imports, maxBytes: maxBytes}
}

// InwardUploadForm holds the header fields sent alongside an inward sheet
type InwardUploadForm struct {
	DefaultUnit  string `form:"default_unit" binding:"max=50"`
	InwardDate   string `form:"inward_date"`
	PurchaseType string `form:"purchase_type"`
	ReceivedBy   string `form:"received_by" binding:"max=100"`
	Remarks      string `form:"remarks"`
}

// OutwardUploadForm holds the header fields sent alongside an outward sheet
type OutwardUploadForm struct {
	DefaultUnit    string  `form:"default_unit" binding:"max=50"`
	OutwardDate    string  `form:"outward_date"`
	VehicleID      *uint64 `form:"vehicle_id"`
	VehicleRegNo   string  `form:"vehicle_reg_no" binding:"max=50"`
	VinNo          string  `form:"vin_no" binding:"max=50"`
	SalesCategory  string  `form:"sales_category" binding:"max=100"`
	InchargePerson string  `form:"incharge_person" binding:"max=100"`
	Remarks        string  `form:"remarks"`
}

// UploadInward godoc
//
//	@Summary		Apply an inward sheet
//	@Description	Every row with a positive quantity becomes a line of one inward register. Blank or zero quantities are skipped; any other bad row rejects the whole upload.
//	@Tags			import
//	@ID				uploadInward
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"CSV or XLSX sheet"
//	@Param			default_unit	formData	string	false	"Unit for rows without one"
//	@Param			inward_date		formData	string	false	"Register date"
//	@Param			purchase_type	formData	string	false	"PAID_PURCHASE, RETURN or RETURN_GHOST"
//	@Success		201				{object}	dto.Response
//	@Failure		400				{object}	dto.Response
//	@Failure		413				{object}	dto.Response
//	@Failure		415				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/inventory/inward/upload [post]
func (h *ImportHandler) UploadInward(c *gin.Context) {
	var form InwardUploadForm
	if err := c.ShouldBind(&form); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}
	date, ok := h.dateField(c, "inward_date", form.InwardDate)
	if !ok {
		return
	}
	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.imports.ImportInward(c.Request.Context(), importapp.InwardImportRequest{
		Filename:     name,
		Data:         data,
		DefaultUnit:  form.DefaultUnit,
		InwardDate:   date,
		PurchaseType: form.PurchaseType,
		ReceivedBy:   form.ReceivedBy,
		Remarks:      form.Remarks,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// UploadOutward godoc
//
//	@Summary		Apply an outward sheet
//	@Description	Every row with a positive quantity becomes a line of one outward register.
//	@Tags			import
//	@ID				uploadOutward
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"CSV or XLSX sheet"
//	@Param			default_unit	formData	string	false	"Unit for rows without one"
//	@Param			vehicle_id		formData	int		false	"Vehicle the goods went to"
//	@Success		201				{object}	dto.Response
//	@Failure		400				{object}	dto.Response
//	@Failure		413				{object}	dto.Response
//	@Failure		422				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/inventory/outward/upload [post]
func (h *ImportHandler) UploadOutward(c *gin.Context) {
	var form OutwardUploadForm
	if err := c.ShouldBind(&form); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}
	date, ok := h.dateField(c, "outward_date", form.OutwardDate)
	if !ok {
		return
	}
	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.imports.ImportOutward(c.Request.Context(), importapp.OutwardImportRequest{
		Filename:    name,
		Data:        data,
		DefaultUnit: form.DefaultUnit,
		Header: inventory.OutwardHeader{
			Date:           date,
			VehicleID:      form.VehicleID,
			VehicleRegNo:   form.VehicleRegNo,
			VinNo:          form.VinNo,
			SalesCategory:  form.SalesCategory,
			InchargePerson: form.InchargePerson,
			Remarks:        form.Remarks,
		},
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// readUpload reads the uploaded sheet into memory, rejecting a missing
// file or one over the size limit
func (h *ImportHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	header, err := c.FormFile(UploadFormField)
	if err != nil {
		h.HandleError(c, shared.NewDomainError(sheetimport.ErrCodeImportInvalidFile, "No file uploaded in field "+UploadFormField))
		return "", nil, false
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		h.HandleError(c, shared.NewDomainErrorWithDetails(sheetimport.ErrCodeImportFileTooLarge,
			fmt.Sprintf("File exceeds the %d byte upload limit", h.maxBytes),
			map[string]any{"file": header.Filename, "size": header.Size}))
		return "", nil, false
	}

	data, err := readFormFile(header)
	if err != nil {
		h.HandleError(c, fmt.Errorf("read upload: %w", err))
		return "", nil, false
	}
	return header.Filename, data, true
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
