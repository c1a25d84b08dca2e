package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// InwardLineInput is one receipt line as the ledger consumes it, independent
// of whether it came from the API or from an uploaded sheet.
type InwardLineInput struct {
	// SourceRow is the spreadsheet row the line came from, 0 for API lines
	SourceRow int
	ProductID uint64
	Quantity  decimal.Decimal
	Unit      appcatalog.UnitRef
	Identity  inventory.LotIdentity
	BatchID   string
	Location  string
}

// LotRef identifies the lot an outward line draws from: by id when set,
// otherwise by barcode or IMEI.
type LotRef struct {
	LotID    uint64
	Identity inventory.LotIdentity
}

// String describes the reference for error messages
func (r LotRef) String() string {
	switch {
	case r.LotID != 0:
		return fmt.Sprintf("lot id %d", r.LotID)
	case r.Identity.Barcode != "":
		return fmt.Sprintf("barcode %q", r.Identity.Barcode)
	case r.Identity.IMEI != "":
		return fmt.Sprintf("IMEI %q", r.Identity.IMEI)
	default:
		return "an empty reference"
	}
}

// OutwardLineInput is one consumption line as the ledger consumes it
type OutwardLineInput struct {
	SourceRow int
	Lot       LotRef
	Quantity  decimal.Decimal
	Unit      appcatalog.UnitRef
}

// InwardOutcome reports what a single inward line did
type InwardOutcome struct {
	Item    *inventory.InwardItem
	Lot     *inventory.ProductItem
	Created bool
}

// ledger applies register lines to lots inside one transaction. It keeps the
// locked lot instances so that several lines touching the same lot mutate one
// in-memory aggregate, and it collects the domain events raised on the way.
type ledger struct {
	repos    TransactionalRepositories
	store    *inventory.LotStore
	units    *appcatalog.UnitIndex
	policy   catalog.UnitPolicy
	defLoc   string
	locked   map[uint64]*inventory.ProductItem
	touched  []*inventory.ProductItem
	products map[uint64]bool
}

func newLedger(repos TransactionalRepositories, units *appcatalog.UnitIndex, policy catalog.UnitPolicy, defaultLocation string) *ledger {
	return &ledger{
		repos:    repos,
		store:    inventory.NewLotStore(repos.Lots()),
		units:    units,
		policy:   policy,
		defLoc:   defaultLocation,
		locked:   make(map[uint64]*inventory.ProductItem),
		products: make(map[uint64]bool),
	}
}

// lock row-locks every not yet locked lot in ascending id order
func (l *ledger) lock(ctx context.Context, ids []uint64) error {
	pending := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := l.locked[id]; !ok {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	lots, err := l.store.LockLots(ctx, pending)
	if err != nil {
		return err
	}
	for id, lot := range lots {
		l.locked[id] = lot
	}
	return nil
}

// canonical returns the locked instance of lot, locking it first if needed
func (l *ledger) canonical(ctx context.Context, id uint64) (*inventory.ProductItem, error) {
	if lot, ok := l.locked[id]; ok {
		return lot, nil
	}
	if err := l.lock(ctx, []uint64{id}); err != nil {
		return nil, err
	}
	return l.locked[id], nil
}

func (l *ledger) touch(lot *inventory.ProductItem) {
	for _, t := range l.touched {
		if t == lot {
			return
		}
	}
	l.touched = append(l.touched, lot)
}

// prelockInward resolves the identities of all lines up front and locks the
// lots they already match, so that lock acquisition follows id order rather
// than line order.
func (l *ledger) prelockInward(ctx context.Context, lines []InwardLineInput, positions []int) error {
	ids := make([]uint64, 0, len(lines))
	for i, line := range lines {
		if line.Identity.IsEmpty() {
			continue
		}
		match, err := l.store.FindLotByIdentity(ctx, line.Identity)
		if err != nil {
			return err
		}
		if err := match.Err(line.Identity); err != nil {
			return wrapLineError(positions[i], line.SourceRow, err)
		}
		if lot := match.Lot(); lot != nil {
			ids = append(ids, lot.ID)
		}
	}
	return l.lock(ctx, inventory.SortedUniqueIDs(ids))
}

// applyInward merges the line into the lot matching its identity or creates
// a new lot, then appends the register line.
func (l *ledger) applyInward(ctx context.Context, inwardID uint64, line InwardLineInput) (*InwardOutcome, error) {
	var (
		lot     *inventory.ProductItem
		created bool
	)

	// Identity is resolved again per line so that a lot created by an
	// earlier line of the same register is merged into, not duplicated.
	match := inventory.IdentityMatch{}
	if !line.Identity.IsEmpty() {
		var err error
		match, err = l.store.FindLotByIdentity(ctx, line.Identity)
		if err != nil {
			return nil, err
		}
		if err := match.Err(line.Identity); err != nil {
			return nil, err
		}
	}

	var unitID uint64
	if found := match.Lot(); found != nil {
		var err error
		if lot, err = l.canonical(ctx, found.ID); err != nil {
			return nil, err
		}
		if unitID, err = l.units.ResolveWithFallback(line.Unit, lot.UnitID); err != nil {
			return nil, err
		}
		qty, err := l.policy.Apply(line.Quantity, l.units.Get(&unitID), l.units.Get(lot.UnitID))
		if err != nil {
			return nil, err
		}
		if lot.UnitID == nil {
			lot.UnitID = &unitID
		}
		if err := l.store.Receive(ctx, lot, qty, line.BatchID, line.Location); err != nil {
			return nil, err
		}
	} else {
		if err := l.ensureProduct(ctx, line.ProductID); err != nil {
			return nil, err
		}
		var err error
		if unitID, err = l.units.ResolveWithFallback(line.Unit, nil); err != nil {
			return nil, err
		}
		location := line.Location
		if location == "" {
			location = l.defLoc
		}
		lot, err = l.store.CreateLot(ctx, inventory.NewLot{
			ProductID: line.ProductID,
			Identity:  line.Identity,
			BatchID:   line.BatchID,
			Location:  location,
			Quantity:  line.Quantity,
			UnitID:    &unitID,
		})
		if err != nil {
			return nil, err
		}
		l.locked[lot.ID] = lot
		created = true
	}
	l.touch(lot)

	item := &inventory.InwardItem{
		InwardID:         inwardID,
		ProductItemID:    lot.ID,
		QuantityReceived: line.Quantity,
		UnitID:           &unitID,
	}
	if err := l.repos.Inwards().AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("append inward item: %w", err)
	}
	return &InwardOutcome{Item: item, Lot: lot, Created: created}, nil
}

func (l *ledger) ensureProduct(ctx context.Context, productID uint64) error {
	if productID == 0 {
		return inventory.ErrProductRequired
	}
	if ok, seen := l.products[productID]; seen {
		if !ok {
			return catalog.NewProductNotFoundError(productID)
		}
		return nil
	}
	exists, err := l.repos.Products().ExistsByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	l.products[productID] = exists
	if !exists {
		return catalog.NewProductNotFoundError(productID)
	}
	return nil
}

// resolveLot maps an outward reference to a lot id without locking it
func (l *ledger) resolveLot(ctx context.Context, ref LotRef) (uint64, error) {
	if ref.LotID != 0 {
		return ref.LotID, nil
	}
	if ref.Identity.IsEmpty() {
		return 0, inventory.NewLotNotFoundError(ref.String())
	}
	match, err := l.store.FindLotByIdentity(ctx, ref.Identity)
	if err != nil {
		return 0, err
	}
	if err := match.Err(ref.Identity); err != nil {
		return 0, err
	}
	lot := match.Lot()
	if lot == nil {
		return 0, inventory.NewLotNotFoundError(ref.String())
	}
	return lot.ID, nil
}

// applyOutward consumes the line's quantity from an already locked lot and
// appends the register line.
func (l *ledger) applyOutward(ctx context.Context, outwardID, lotID uint64, line OutwardLineInput) (*inventory.OutwardItem, *inventory.ProductItem, error) {
	lot, err := l.canonical(ctx, lotID)
	if err != nil {
		return nil, nil, err
	}
	unitID, err := l.units.ResolveWithFallback(line.Unit, lot.UnitID)
	if err != nil {
		return nil, nil, err
	}
	qty, err := l.policy.Apply(line.Quantity, l.units.Get(&unitID), l.units.Get(lot.UnitID))
	if err != nil {
		return nil, nil, err
	}
	if err := l.store.Consume(ctx, lot, qty); err != nil {
		return nil, nil, err
	}
	l.touch(lot)

	item := &inventory.OutwardItem{
		OutwardID:     outwardID,
		ProductItemID: lot.ID,
		QuantityUsed:  line.Quantity,
		UnitID:        &unitID,
	}
	if err := l.repos.Outwards().AddItem(ctx, item); err != nil {
		return nil, nil, fmt.Errorf("append outward item: %w", err)
	}
	return item, lot, nil
}

// events drains the domain events raised on every touched lot
func (l *ledger) events() []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, lot := range l.touched {
		out = append(out, lot.PendingEvents()...)
		lot.ClearEvents()
	}
	return out
}
