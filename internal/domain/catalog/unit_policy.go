package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// UnitPolicy decides how a line quantity expressed in one unit is applied to
// a lot whose stock is kept in another unit.
type UnitPolicy string

const (
	// UnitPolicyConvert requires both units to share a family and converts
	// the line quantity into the lot's unit before any arithmetic.
	UnitPolicyConvert UnitPolicy = "convert"
	// UnitPolicySameFamily requires both units to share a family but applies
	// the raw quantity unconverted.
	UnitPolicySameFamily UnitPolicy = "same_family"
)

// ParseUnitPolicy parses a configured policy name. Empty means convert.
func ParseUnitPolicy(s string) (UnitPolicy, error) {
	switch UnitPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitPolicyConvert:
		return UnitPolicyConvert, nil
	case UnitPolicySameFamily:
		return UnitPolicySameFamily, nil
	default:
		return "", fmt.Errorf("unknown unit policy %q", s)
	}
}

// Apply returns the quantity to add to or remove from a lot kept in lotUnit
// when the line is expressed in lineUnit. A nil unit on either side means the
// lot has no recorded unit yet or the line carries none, and the quantity
// passes through unchanged.
func (p UnitPolicy) Apply(quantity decimal.Decimal, lineUnit, lotUnit *Unit) (decimal.Decimal, error) {
	if lineUnit == nil || lotUnit == nil || lineUnit.ID == lotUnit.ID {
		return quantity, nil
	}
	if !lineUnit.SameFamily(lotUnit) {
		return decimal.Zero, NewUnitFamilyMismatchError(lineUnit, lotUnit)
	}
	if p == UnitPolicySameFamily {
		return quantity, nil
	}
	return lineUnit.ConvertTo(quantity, lotUnit)
}

// Error codes raised by the catalog
const (
	CodeUnresolvedUnit     = "UNRESOLVED_UNIT"
	CodeUnitFamilyMismatch = "UNIT_FAMILY_MISMATCH"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
)

// NewUnitFamilyMismatchError reports a line unit that cannot be applied to a lot's unit.
func NewUnitFamilyMismatchError(from, to *Unit) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(CodeUnitFamilyMismatch,
		fmt.Sprintf("Unit %s cannot be applied to stock kept in %s", from.Name, to.Name),
		map[string]any{
			"from_unit_id": from.ID,
			"to_unit_id":   to.ID,
		})
}

// NewUnresolvedUnitError reports that no unit could be determined for a line.
func NewUnresolvedUnitError(hint string) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(CodeUnresolvedUnit,
		"Unit could not be resolved and no fallback unit is configured",
		map[string]any{"hint": hint})
}

// NewProductNotFoundError reports a product reference that does not exist.
func NewProductNotFoundError(productID uint64) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(CodeProductNotFound,
		fmt.Sprintf("Product %d not found", productID),
		map[string]any{"product_id": productID})
}
