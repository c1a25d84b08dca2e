package dto

import (
	"net/http"
	"testing"

	"github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/fleet"
	domaininv "github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	sheetimport "github.com/stockledger/backend/internal/infrastructure/import"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domaininv.CodeDuplicateIdentity, http.StatusConflict},
		{domaininv.CodeInvalidQuantity, http.StatusBadRequest},
		{domaininv.CodeInsufficientStock, http.StatusUnprocessableEntity},
		{domaininv.CodeLotNotFound, http.StatusNotFound},
		{domaininv.CodeAmbiguousIdentity, http.StatusConflict},
		{domaininv.CodeMalformedRow, http.StatusBadRequest},
		{domaininv.CodeProductRequired, http.StatusBadRequest},
		{catalog.CodeUnresolvedUnit, http.StatusUnprocessableEntity},
		{catalog.CodeUnitFamilyMismatch, http.StatusUnprocessableEntity},
		{catalog.CodeProductNotFound, http.StatusNotFound},
		{fleet.CodeVehicleNotFound, http.StatusNotFound},
		{inventory.ErrTransactionTimeout.Code, http.StatusServiceUnavailable},
		{shared.ErrConcurrencyConflict.Code, http.StatusConflict},
		{shared.ErrInvalidInput.Code, http.StatusBadRequest},
		{shared.ErrForbidden.Code, http.StatusForbidden},
		{shared.ErrNotFound.Code, http.StatusNotFound},
		{sheetimport.ErrCodeImportFileTooLarge, http.StatusRequestEntityTooLarge},
		{sheetimport.ErrCodeImportUnsupported, http.StatusUnsupportedMediaType},
		{sheetimport.ErrCodeImportMissingHeader, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse(shared.NewPaginated[int](nil, 41, 2, 20))
	assert.True(t, resp.Success)
	assert.Equal(t, []int{}, resp.Data)
	assert.Equal(t, &Meta{Total: 41, Page: 2, PageSize: 20, TotalPages: 3}, resp.Meta)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("bad", "req-1", []ValidationDetail{{Field: "items", Message: "required"}})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details["fields"], 1)

	empty := NewValidationErrorResponse("bad", "", nil)
	assert.Nil(t, empty.Error.Details)
}

func TestPageRequest_Normalize(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PageSize: 20}, PageRequest{}.Normalize())
	assert.Equal(t, PageRequest{Page: 3, PageSize: 50}, PageRequest{Page: 3, PageSize: 50}.Normalize())
}
