package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// LotStore owns every mutation of stock lots. Each operation applies the
// aggregate's rules and persists the result through the repository it was
// built with, so a LotStore built on a transactional repository mutates
// within that transaction.
type LotStore struct {
	items ProductItemRepository
}

// NewLotStore creates a LotStore over the given repository
func NewLotStore(items ProductItemRepository) *LotStore {
	return &LotStore{items: items}
}

// FindLotByIdentity looks the barcode and the IMEI up independently and
// returns the tagged combination. Absent identifiers are not looked up.
func (s *LotStore) FindLotByIdentity(ctx context.Context, identity LotIdentity) (IdentityMatch, error) {
	byBarcode, err := s.lookup(ctx, identity.Barcode, s.items.FindByBarcode)
	if err != nil {
		return IdentityMatch{}, fmt.Errorf("find lot by barcode: %w", err)
	}
	byIMEI, err := s.lookup(ctx, identity.IMEI, s.items.FindByIMEI)
	if err != nil {
		return IdentityMatch{}, fmt.Errorf("find lot by imei: %w", err)
	}
	return ResolveIdentity(byBarcode, byIMEI), nil
}

func (s *LotStore) lookup(ctx context.Context, value string, find func(context.Context, string) (*ProductItem, error)) (*ProductItem, error) {
	if value == "" {
		return nil, nil
	}
	lot, err := find(ctx, value)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return lot, err
}

// CreateLot registers a new lot. Either identifier already present on
// another lot fails with DuplicateIdentity.
func (s *LotStore) CreateLot(ctx context.Context, newLot NewLot) (*ProductItem, error) {
	match, err := s.FindLotByIdentity(ctx, newLot.Identity)
	if err != nil {
		return nil, err
	}
	if match.ByBarcode != nil {
		return nil, NewDuplicateIdentityError("barcode", newLot.Identity.Barcode, match.ByBarcode.ID)
	}
	if match.ByIMEI != nil {
		return nil, NewDuplicateIdentityError("imei", newLot.Identity.IMEI, match.ByIMEI.ID)
	}

	lot, err := NewProductItem(newLot)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, lot); err != nil {
		return nil, err
	}
	lot.RecordCreated()
	return lot, nil
}

// Receive adds quantity to an existing lot and persists it
func (s *LotStore) Receive(ctx context.Context, lot *ProductItem, quantity decimal.Decimal, batchID, location string) error {
	if err := lot.Receive(quantity, batchID, location); err != nil {
		return err
	}
	return s.items.SaveWithLock(ctx, lot)
}

// Consume removes quantity from a lot and persists it. The lot should have
// been loaded through LockLots so the balance check cannot race.
func (s *LotStore) Consume(ctx context.Context, lot *ProductItem, quantity decimal.Decimal) error {
	if err := lot.Consume(quantity); err != nil {
		return err
	}
	return s.items.SaveWithLock(ctx, lot)
}

// Relocate moves a lot to another location and persists it
func (s *LotStore) Relocate(ctx context.Context, lot *ProductItem, location string) error {
	if err := lot.Relocate(location); err != nil {
		return err
	}
	return s.items.SaveWithLock(ctx, lot)
}

// LockLots row-locks the given lots in ascending ID order and returns them
// keyed by ID. Any ID without a lot fails with LotNotFound.
func (s *LotStore) LockLots(ctx context.Context, ids []uint64) (map[uint64]*ProductItem, error) {
	ordered := SortedUniqueIDs(ids)
	locked := make(map[uint64]*ProductItem, len(ordered))
	if len(ordered) == 0 {
		return locked, nil
	}

	lots, err := s.items.FindByIDsForUpdate(ctx, ordered)
	if err != nil {
		return nil, fmt.Errorf("lock lots: %w", err)
	}
	for i := range lots {
		locked[lots[i].ID] = &lots[i]
	}
	for _, id := range ordered {
		if _, ok := locked[id]; !ok {
			return nil, NewLotNotFoundError(fmt.Sprintf("lot id %d", id))
		}
	}
	return locked, nil
}

// SortedUniqueIDs returns the non-zero IDs deduplicated in ascending order,
// the only order in which lot locks may be taken.
func SortedUniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
