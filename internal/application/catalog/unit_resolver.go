package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/stockledger/backend/internal/domain/catalog"
)

// UnitResolution is the result of resolving a free-text unit hint
type UnitResolution struct {
	UnitID uint64
	Found  bool
}

// UnitRef describes the unit a ledger line was expressed in. ID takes
// precedence over Hint; Default is the caller-level fallback (for example the
// default unit chosen for a whole upload).
type UnitRef struct {
	ID      *uint64
	Hint    string
	Default *uint64
}

// UnitIndex is an immutable snapshot of the unit catalog. Services build one
// before opening a transaction and reuse it for every line.
type UnitIndex struct {
	units         []catalog.Unit
	byID          map[uint64]*catalog.Unit
	systemDefault *uint64
}

// NewUnitIndex indexes units. defaultHint names the system default unit and
// may be empty, in which case there is no last-resort fallback.
func NewUnitIndex(units []catalog.Unit, defaultHint string) *UnitIndex {
	idx := &UnitIndex{
		units: units,
		byID:  make(map[uint64]*catalog.Unit, len(units)),
	}
	for i := range idx.units {
		idx.byID[idx.units[i].ID] = &idx.units[i]
	}
	if res := idx.Resolve(defaultHint); res.Found {
		id := res.UnitID
		idx.systemDefault = &id
	}
	return idx
}

// Resolve maps a hint to a unit id by name first, then by base unit.
// Among several candidates the lowest id wins. Unknown or empty hints yield
// Found=false; Resolve never fails.
func (x *UnitIndex) Resolve(hint string) UnitResolution {
	if strings.TrimSpace(hint) == "" {
		return UnitResolution{}
	}
	var nameMatch, baseMatch *catalog.Unit
	for i := range x.units {
		u := &x.units[i]
		byName, byBase := u.Matches(hint)
		if byName && (nameMatch == nil || u.ID < nameMatch.ID) {
			nameMatch = u
		}
		if byBase && (baseMatch == nil || u.ID < baseMatch.ID) {
			baseMatch = u
		}
	}
	switch {
	case nameMatch != nil:
		return UnitResolution{UnitID: nameMatch.ID, Found: true}
	case baseMatch != nil:
		return UnitResolution{UnitID: baseMatch.ID, Found: true}
	}
	return UnitResolution{}
}

// Get returns the unit with the id, or nil
func (x *UnitIndex) Get(id *uint64) *catalog.Unit {
	if id == nil {
		return nil
	}
	return x.byID[*id]
}

// Has reports whether the id exists in the catalog
func (x *UnitIndex) Has(id uint64) bool {
	_, ok := x.byID[id]
	return ok
}

// SystemDefault returns the configured last-resort unit, if any
func (x *UnitIndex) SystemDefault() *uint64 {
	return x.systemDefault
}

// ResolveWithFallback picks the unit for a line in priority order: the
// line's own unit (explicit id or resolvable hint), the caller default, the
// lot's last known unit, and finally the system default. An explicit id must
// exist in the catalog; only free-text hints fall back.
func (x *UnitIndex) ResolveWithFallback(ref UnitRef, lotUnit *uint64) (uint64, error) {
	if ref.ID != nil {
		if !x.Has(*ref.ID) {
			return 0, catalog.NewUnresolvedUnitError(fmt.Sprintf("unit id %d", *ref.ID))
		}
		return *ref.ID, nil
	}
	if res := x.Resolve(ref.Hint); res.Found {
		return res.UnitID, nil
	}
	for _, candidate := range []*uint64{ref.Default, lotUnit, x.systemDefault} {
		if candidate != nil && x.Has(*candidate) {
			return *candidate, nil
		}
	}
	return 0, catalog.NewUnresolvedUnitError(ref.Hint)
}

// Units returns the indexed units in catalog order
func (x *UnitIndex) Units() []catalog.Unit {
	return x.units
}

// UnitResolver resolves unit hints against the unit catalog
type UnitResolver struct {
	units       catalog.UnitRepository
	defaultHint string
}

// NewUnitResolver creates a UnitResolver. defaultHint names the system
// default unit used when nothing else applies.
func NewUnitResolver(units catalog.UnitRepository, defaultHint string) *UnitResolver {
	return &UnitResolver{units: units, defaultHint: defaultHint}
}

// Load snapshots the catalog into a UnitIndex
func (r *UnitResolver) Load(ctx context.Context) (*UnitIndex, error) {
	units, err := r.units.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	return NewUnitIndex(units, r.defaultHint), nil
}

// Resolve maps a hint to a unit id. Only store failures are returned as errors.
func (r *UnitResolver) Resolve(ctx context.Context, hint string) (UnitResolution, error) {
	idx, err := r.Load(ctx)
	if err != nil {
		return UnitResolution{}, err
	}
	return idx.Resolve(hint), nil
}
