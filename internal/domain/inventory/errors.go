package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Ledger error codes
const (
	CodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeLotNotFound       = "LOT_NOT_FOUND"
	CodeAmbiguousIdentity = "AMBIGUOUS_IDENTITY"
	CodeMalformedRow      = "MALFORMED_ROW"
	CodeProductRequired   = "PRODUCT_REQUIRED"
)

// Sentinels for errors.Is comparisons. DomainError.Is matches by code, so
// errors built by the constructors below compare equal to these.
var (
	ErrDuplicateIdentity = shared.NewDomainError(CodeDuplicateIdentity, "Barcode or IMEI already belongs to another lot")
	ErrInvalidQuantity   = shared.NewDomainError(CodeInvalidQuantity, "Quantity must be positive")
	ErrInsufficientStock = shared.NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrLotNotFound       = shared.NewDomainError(CodeLotNotFound, "Stock lot not found")
	ErrAmbiguousIdentity = shared.NewDomainError(CodeAmbiguousIdentity, "Barcode and IMEI refer to different lots")
	ErrMalformedRow      = shared.NewDomainError(CodeMalformedRow, "Spreadsheet row could not be parsed")
	ErrProductRequired   = shared.NewDomainError(CodeProductRequired, "Product ID is required to create a new lot")
)

// NewInvalidQuantityError reports a non-positive quantity
func NewInvalidQuantityError(q decimal.Decimal) *shared.DomainError {
	return ErrInvalidQuantity.WithDetail("quantity", q.String())
}

// NewInsufficientStockError reports a consumption larger than the lot's
// available balance, with enough context for the caller to act on it.
func NewInsufficientStockError(lot *ProductItem, requested decimal.Decimal) *shared.DomainError {
	shortfall := requested.Sub(lot.AvailableQuantity)
	return shared.NewDomainErrorWithDetails(CodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for lot %d%s: requested %s, available %s, short by %s",
			lot.ID, describeIdentity(lot.Identity()), requested.String(), lot.AvailableQuantity.String(), shortfall.String()),
		map[string]any{
			"lot_id":    lot.ID,
			"barcode":   deref(lot.Barcode),
			"imei":      deref(lot.IMEI),
			"requested": requested.String(),
			"available": lot.AvailableQuantity.String(),
			"shortfall": shortfall.String(),
		})
}

// NewDuplicateIdentityError reports an identifier already owned by another lot
func NewDuplicateIdentityError(field, value string, existingLotID uint64) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(CodeDuplicateIdentity,
		fmt.Sprintf("%s %q already belongs to lot %d", field, value, existingLotID),
		map[string]any{
			"field":  field,
			"value":  value,
			"lot_id": existingLotID,
		})
}

// NewLotNotFoundError reports a reference that resolved to no lot
func NewLotNotFoundError(ref string) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(CodeLotNotFound,
		fmt.Sprintf("No stock lot matches %s", ref),
		map[string]any{"reference": ref})
}

// NewAmbiguousIdentityError reports a barcode and IMEI owned by different lots
func NewAmbiguousIdentityError(identity LotIdentity, barcodeLotID, imeiLotID uint64) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(CodeAmbiguousIdentity,
		fmt.Sprintf("Barcode %q belongs to lot %d but IMEI %q belongs to lot %d",
			identity.Barcode, barcodeLotID, identity.IMEI, imeiLotID),
		map[string]any{
			"barcode":        identity.Barcode,
			"imei":           identity.IMEI,
			"barcode_lot_id": barcodeLotID,
			"imei_lot_id":    imeiLotID,
		})
}

// NewMalformedRowError reports a spreadsheet cell the importer cannot parse
func NewMalformedRowError(row int, column, value, reason string) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(CodeMalformedRow,
		fmt.Sprintf("Row %d: %s", row, reason),
		map[string]any{
			"row":    row,
			"column": column,
			"value":  value,
		})
}

func describeIdentity(id LotIdentity) string {
	switch {
	case id.Barcode != "":
		return fmt.Sprintf(" (barcode %s)", id.Barcode)
	case id.IMEI != "":
		return fmt.Sprintf(" (IMEI %s)", id.IMEI)
	default:
		return ""
	}
}
