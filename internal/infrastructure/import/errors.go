package sheetimport

import (
	"errors"
	"fmt"
)

// Import error codes
const (
	ErrCodeImportInvalidFile   = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile     = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge  = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportEncoding      = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeImportMissingHeader = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportUnsupported   = "ERR_IMPORT_UNSUPPORTED_FORMAT"
)

// Common import errors
var (
	// ErrEmptyFile is returned when the upload has no bytes or no sheet content
	ErrEmptyFile = errors.New("uploaded file is empty")

	// ErrInvalidEncoding is returned when a CSV upload is not UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding, expected UTF-8")

	// ErrMissingHeader is returned when the sheet has no header row
	ErrMissingHeader = errors.New("sheet is missing its header row")

	// ErrFileTooLarge is returned when the file exceeds maximum size
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrUnsupportedFormat is returned for extensions other than .xlsx and .csv
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")
)

// Code maps a reader error to its import error code. Unknown errors map to
// ERR_IMPORT_INVALID_FILE.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return ErrCodeImportEmptyFile
	case errors.Is(err, ErrInvalidEncoding):
		return ErrCodeImportEncoding
	case errors.Is(err, ErrMissingHeader):
		return ErrCodeImportMissingHeader
	case errors.Is(err, ErrFileTooLarge):
		return ErrCodeImportFileTooLarge
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeImportUnsupported
	default:
		return ErrCodeImportInvalidFile
	}
}

// CellError reports a cell that could not be interpreted
type CellError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e *CellError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewCellError creates a CellError
func NewCellError(row int, column, message, value string) *CellError {
	return &CellError{Row: row, Column: column, Message: message, Value: value}
}
