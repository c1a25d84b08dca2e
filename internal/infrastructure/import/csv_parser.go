package sheetimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"
)

// CSVOption is a functional option for CSV reading
type CSVOption func(*csv.Reader)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) CSVOption {
	return func(r *csv.Reader) {
		r.Comma = d
	}
}

// readCSV reads every record of a UTF-8 CSV upload. A leading BOM is
// dropped and rows may have a variable number of fields.
func readCSV(data []byte, opts ...CSVOption) ([][]string, error) {
	br := bufio.NewReader(bytes.NewReader(data))

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if head, _ := br.Peek(3); len(head) == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	if err := validateUTF8(br); err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(reader)
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// validateUTF8 checks the first block of the upload for valid UTF-8
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}

	// A multi-byte rune may straddle the end of a full peek window
	if len(content) == checkSize {
		for i := 1; i < utf8.UTFMax && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}
