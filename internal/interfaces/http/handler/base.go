// Package handler contains the gin handlers of the ledger API.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	importapp "github.com/stockledger/backend/internal/application/import"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c), nil))
}

// HandleError converts an error to an HTTP response. Domain errors keep
// their code and details; anything else is logged and reported as an
// internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	if de, ok := shared.AsDomainError(err); ok {
		var rowErr *importapp.ImportRowError
		if errors.As(err, &rowErr) {
			if _, has := de.Details["row"]; !has {
				de = de.WithDetail("row", rowErr.Row)
			}
		}
		c.JSON(dto.GetHTTPStatus(de.Code), dto.NewErrorResponse(de.Code, de.Message, requestID, de.Details))
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrCodeRequestTooLarge,
			"Request body exceeds maximum allowed size", requestID, map[string]any{"max_bytes": tooLarge.Limit}))
		return
	}

	_ = c.Error(err)
	logger.FromContext(c.Request.Context()).Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal,
		"An unexpected error occurred", requestID, nil))
}

// bindJSON binds and validates the request body, answering the request on failure
func (h *BaseHandler) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		middleware.HandleBindingError(c, err)
		return false
	}
	return true
}

// bindQuery binds and validates query parameters, answering the request on failure
func (h *BaseHandler) bindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		middleware.HandleBindingError(c, err)
		return false
	}
	return true
}

// parseID reads a positive numeric path parameter
func (h *BaseHandler) parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.BadRequest(c, "Invalid "+name+" format")
		return 0, false
	}
	return id, true
}

// pageResponse sends one page of a listing
func pageResponse[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// parseDateTime parses a date or datetime. An empty string is the zero
// time, which the ledger treats as now.
func parseDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// dateField parses a date field, answering the request with a validation
// error when it is malformed
func (h *BaseHandler) dateField(c *gin.Context, field, value string) (time.Time, bool) {
	t, err := parseDateTime(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed",
			middleware.GetRequestID(c),
			[]dto.ValidationDetail{{Field: field, Message: "Must be a date (YYYY-MM-DD) or RFC3339 timestamp"}}))
		return time.Time{}, false
	}
	return t, true
}
