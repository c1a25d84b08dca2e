package inventory

import "strings"

// LotIdentity is the pair of optional external identifiers a lot can carry.
// Empty strings mean absent.
type LotIdentity struct {
	Barcode string
	IMEI    string
}

// NewLotIdentity normalizes surrounding whitespace
func NewLotIdentity(barcode, imei string) LotIdentity {
	return LotIdentity{
		Barcode: strings.TrimSpace(barcode),
		IMEI:    strings.TrimSpace(imei),
	}
}

// IsEmpty reports whether neither identifier is present
func (i LotIdentity) IsEmpty() bool {
	return i.Barcode == "" && i.IMEI == ""
}

// BarcodePtr returns the barcode for storage, nil when absent
func (i LotIdentity) BarcodePtr() *string {
	return optionalString(i.Barcode)
}

// IMEIPtr returns the IMEI for storage, nil when absent
func (i LotIdentity) IMEIPtr() *string {
	return optionalString(i.IMEI)
}

// MatchKind tags how an identity lookup was resolved
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchedByBarcode
	MatchedByImei
	MatchAmbiguous
)

// String returns the match kind name
func (k MatchKind) String() string {
	switch k {
	case MatchedByBarcode:
		return "matched_by_barcode"
	case MatchedByImei:
		return "matched_by_imei"
	case MatchAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// IdentityMatch is the tagged result of resolving a LotIdentity.
// Barcode and IMEI are looked up independently; when they point at two
// different lots the match is ambiguous and carries both.
type IdentityMatch struct {
	Kind      MatchKind
	ByBarcode *ProductItem
	ByIMEI    *ProductItem
}

// ResolveIdentity combines the independent barcode and IMEI lookups.
func ResolveIdentity(byBarcode, byIMEI *ProductItem) IdentityMatch {
	m := IdentityMatch{ByBarcode: byBarcode, ByIMEI: byIMEI}
	switch {
	case byBarcode == nil && byIMEI == nil:
		m.Kind = MatchNone
	case byBarcode != nil && byIMEI != nil && byBarcode.ID != byIMEI.ID:
		m.Kind = MatchAmbiguous
	case byBarcode != nil:
		m.Kind = MatchedByBarcode
	default:
		m.Kind = MatchedByImei
	}
	return m
}

// Lot returns the matched lot for MatchedByBarcode and MatchedByImei, nil otherwise.
func (m IdentityMatch) Lot() *ProductItem {
	switch m.Kind {
	case MatchedByBarcode:
		return m.ByBarcode
	case MatchedByImei:
		return m.ByIMEI
	default:
		return nil
	}
}

// Found reports whether a single lot was matched
func (m IdentityMatch) Found() bool {
	return m.Lot() != nil
}

// Err converts an ambiguous match into an error; other kinds return nil.
func (m IdentityMatch) Err(identity LotIdentity) error {
	if m.Kind != MatchAmbiguous {
		return nil
	}
	return NewAmbiguousIdentityError(identity, m.ByBarcode.ID, m.ByIMEI.ID)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimOrDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
