package dto

import "net/http"

// Transport error codes. Domain errors keep their own codes (for example
// INSUFFICIENT_STOCK); these cover failures raised by the HTTP layer itself.
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired    = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "ERR_TOKEN_INVALID"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeUnavailable     = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Transport
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,

	// Shared domain errors
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"INVALID_INPUT":        http.StatusBadRequest,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"FORBIDDEN":            http.StatusForbidden,

	// Ledger
	"DUPLICATE_IDENTITY":  http.StatusConflict,
	"INVALID_QUANTITY":    http.StatusBadRequest,
	"INSUFFICIENT_STOCK":  http.StatusUnprocessableEntity,
	"LOT_NOT_FOUND":       http.StatusNotFound,
	"AMBIGUOUS_IDENTITY":  http.StatusConflict,
	"MALFORMED_ROW":       http.StatusBadRequest,
	"PRODUCT_REQUIRED":    http.StatusBadRequest,
	"TRANSACTION_TIMEOUT": http.StatusServiceUnavailable,

	// Catalog and fleet
	"UNRESOLVED_UNIT":           http.StatusUnprocessableEntity,
	"UNIT_FAMILY_MISMATCH":      http.StatusUnprocessableEntity,
	"PRODUCT_NOT_FOUND":         http.StatusNotFound,
	"VEHICLE_NOT_FOUND":         http.StatusNotFound,
	"INVALID_UNIT":              http.StatusBadRequest,
	"INVALID_CONVERSION_FACTOR": http.StatusBadRequest,
	"INVALID_PRODUCT":           http.StatusBadRequest,

	// Uploads
	"ERR_IMPORT_INVALID_FILE":       http.StatusBadRequest,
	"ERR_IMPORT_EMPTY_FILE":         http.StatusBadRequest,
	"ERR_IMPORT_FILE_TOO_LARGE":     http.StatusRequestEntityTooLarge,
	"ERR_IMPORT_INVALID_ENCODING":   http.StatusBadRequest,
	"ERR_IMPORT_MISSING_HEADER":     http.StatusBadRequest,
	"ERR_IMPORT_UNSUPPORTED_FORMAT": http.StatusUnsupportedMediaType,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
