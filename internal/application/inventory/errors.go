package inventory

import (
	"fmt"

	"github.com/stockledger/backend/internal/domain/shared"
)

// LineError attributes a failure to one line of a register: an API line
// (Kind "line") or a spreadsheet row (Kind "row").
type LineError struct {
	Kind   string
	Number int
	Err    error
}

// Error implements the error interface
func (e *LineError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Kind, e.Number, e.Err)
}

// Unwrap returns the underlying error
func (e *LineError) Unwrap() error {
	return e.Err
}

// wrapLineError tags err with the line it came from. Domain errors also get
// the position added to their details so it reaches API clients.
func wrapLineError(index, sourceRow int, err error) error {
	kind, number := "line", index+1
	if sourceRow > 0 {
		kind, number = "row", sourceRow
	}
	if de, ok := shared.AsDomainError(err); ok {
		err = de.WithDetail(kind, number)
	}
	return &LineError{Kind: kind, Number: number, Err: err}
}
