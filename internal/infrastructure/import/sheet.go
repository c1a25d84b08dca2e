// Package sheetimport reads uploaded inventory sheets (.xlsx or .csv) into
// header-normalized rows. It knows nothing about lots or registers; mapping
// rows onto ledger lines is the importer's job.
package sheetimport

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Row is one data row of a sheet. Number is the 1-based row number as the
// user sees it in the spreadsheet, header included.
type Row struct {
	Number int
	Cells  map[string]string
}

// Get returns the trimmed value of the first alias present in the row.
// Aliases must already be normalized.
func (r Row) Get(aliases ...string) string {
	for _, a := range aliases {
		if v, ok := r.Cells[a]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Column returns the first alias present as a header, even if the cell is
// empty. It is used to name the column in error messages.
func (r Row) Column(aliases ...string) string {
	for _, a := range aliases {
		if _, ok := r.Cells[a]; ok {
			return a
		}
	}
	if len(aliases) > 0 {
		return aliases[0]
	}
	return ""
}

// IsEmpty returns true if the row has no non-empty values
func (r Row) IsEmpty() bool {
	for _, v := range r.Cells {
		if v != "" {
			return false
		}
	}
	return true
}

// Sheet is a parsed upload: its normalized headers and its data rows
type Sheet struct {
	Headers []string
	Rows    []Row
}

// HasColumn reports whether any alias is among the headers
func (s *Sheet) HasColumn(aliases ...string) bool {
	for _, h := range s.Headers {
		for _, a := range aliases {
			if h == a {
				return true
			}
		}
	}
	return false
}

// NormalizeHeader lower-cases a header and strips everything that is not a
// letter or digit, so "Product Item ID", "product_item_id" and
// "productItemId" all become "productitemid".
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

var embeddedIDPattern = regexp.MustCompile(`^\s*ID:\s*(\d+)\s*-`)

// UnwrapEmbeddedID extracts n from dropdown values of the form
// "ID:<n> - <label>". Any other value is returned trimmed and unchanged.
func UnwrapEmbeddedID(v string) string {
	if m := embeddedIDPattern.FindStringSubmatch(v); m != nil {
		return m[1]
	}
	return strings.TrimSpace(v)
}

// Format is a supported upload format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat picks the format from the file extension
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ReadSheet parses an upload. maxBytes <= 0 disables the size check. For
// workbooks only the first sheet is read.
func ReadSheet(filename string, data []byte, maxBytes int64) (*Sheet, error) {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = readWorkbook(data)
	default:
		records, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}
	return buildSheet(records)
}

// buildSheet turns raw records into a Sheet. The first non-blank record is
// the header; blank data rows are dropped but still counted for numbering.
func buildSheet(records [][]string) (*Sheet, error) {
	headerAt := -1
	for i, rec := range records {
		if !blankRecord(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrMissingHeader
	}

	headers := make([]string, len(records[headerAt]))
	for i, h := range records[headerAt] {
		headers[i] = NormalizeHeader(h)
	}

	sheet := &Sheet{Headers: headers}
	for i := headerAt + 1; i < len(records); i++ {
		rec := records[i]
		if blankRecord(rec) {
			continue
		}
		row := Row{Number: i + 1, Cells: make(map[string]string, len(headers))}
		for col, h := range headers {
			if h == "" {
				continue
			}
			if _, dup := row.Cells[h]; dup {
				// first column with a given name wins
				continue
			}
			value := ""
			if col < len(rec) {
				value = strings.TrimSpace(rec[col])
			}
			row.Cells[h] = value
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
