package importapp

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	sheetimport "github.com/stockledger/backend/internal/infrastructure/import"
)

// Column aliases, already normalized
var (
	colProduct  = []string{"productid", "product", "productmaster"}
	colBarcode  = []string{"barcode"}
	colIMEI     = []string{"imei"}
	colBatch    = []string{"batch", "batchid", "batchno"}
	colLocation = []string{"location", "stocklocation"}
	colUnit     = []string{"unit", "unitname", "uom"}
	colLot      = []string{"productitemid", "lotid", "itemid", "lot"}

	colInwardQty  = []string{"quantity", "qty", "quantityreceived"}
	colOutwardQty = []string{"quantity", "qty", "quantityused"}
)

// parseQuantity reads the quantity cell. ok is false when the row must be
// skipped: blank, zero or negative.
func parseQuantity(row sheetimport.Row, aliases []string) (qty decimal.Decimal, ok bool, err error) {
	raw := row.Get(aliases...)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	qty, perr := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if perr != nil {
		return decimal.Zero, false, inventory.NewMalformedRowError(row.Number, row.Column(aliases...), raw, "quantity is not a number")
	}
	if !qty.IsPositive() {
		return decimal.Zero, false, nil
	}
	return qty, true, nil
}

// parseID reads an optional id cell, unwrapping dropdown values
func parseID(row sheetimport.Row, aliases []string, what string) (uint64, error) {
	raw := row.Get(aliases...)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(sheetimport.UnwrapEmbeddedID(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, inventory.NewMalformedRowError(row.Number, row.Column(aliases...), raw, what+" is not a valid id")
	}
	return id, nil
}

// parseUnit reads the unit cell. Dropdown values carry the unit id; anything
// else is a free-text hint for the unit resolver.
func parseUnit(row sheetimport.Row, defaultUnit *uint64) appcatalog.UnitRef {
	ref := appcatalog.UnitRef{Default: defaultUnit}
	raw := row.Get(colUnit...)
	if raw == "" {
		return ref
	}
	if unwrapped := sheetimport.UnwrapEmbeddedID(raw); unwrapped != strings.TrimSpace(raw) {
		if id, err := strconv.ParseUint(unwrapped, 10, 64); err == nil {
			ref.ID = &id
			return ref
		}
	}
	ref.Hint = raw
	return ref
}

// inwardLine maps a row onto an inward line. ok is false for skipped rows.
func inwardLine(row sheetimport.Row, defaultUnit *uint64) (appinv.InwardLineInput, bool, error) {
	qty, ok, err := parseQuantity(row, colInwardQty)
	if err != nil || !ok {
		return appinv.InwardLineInput{}, false, err
	}
	productID, err := parseID(row, colProduct, "product")
	if err != nil {
		return appinv.InwardLineInput{}, false, err
	}
	return appinv.InwardLineInput{
		SourceRow: row.Number,
		ProductID: productID,
		Quantity:  qty,
		Unit:      parseUnit(row, defaultUnit),
		Identity:  inventory.NewLotIdentity(row.Get(colBarcode...), row.Get(colIMEI...)),
		BatchID:   row.Get(colBatch...),
		Location:  row.Get(colLocation...),
	}, true, nil
}

// outwardLine maps a row onto an outward line. ok is false for skipped rows.
func outwardLine(row sheetimport.Row, defaultUnit *uint64) (appinv.OutwardLineInput, bool, error) {
	qty, ok, err := parseQuantity(row, colOutwardQty)
	if err != nil || !ok {
		return appinv.OutwardLineInput{}, false, err
	}
	lotID, err := parseID(row, colLot, "lot")
	if err != nil {
		return appinv.OutwardLineInput{}, false, err
	}
	ref := appinv.LotRef{
		LotID:    lotID,
		Identity: inventory.NewLotIdentity(row.Get(colBarcode...), row.Get(colIMEI...)),
	}
	if ref.LotID == 0 && ref.Identity.IsEmpty() {
		return appinv.OutwardLineInput{}, false, inventory.NewMalformedRowError(row.Number, colLot[0], "",
			"a lot id, barcode or IMEI is required")
	}
	return appinv.OutwardLineInput{
		SourceRow: row.Number,
		Lot:       ref,
		Quantity:  qty,
		Unit:      parseUnit(row, defaultUnit),
	}, true, nil
}
