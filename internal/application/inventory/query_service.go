package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

const maxPageSize = 200

// QueryService serves read-only views of the ledger. It never takes locks.
type QueryService struct {
	lots     inventory.ProductItemRepository
	inwards  inventory.InwardRepository
	outwards inventory.OutwardRepository
	products catalog.ProductRepository
}

// NewQueryService creates a QueryService
func NewQueryService(lots inventory.ProductItemRepository, inwards inventory.InwardRepository, outwards inventory.OutwardRepository, products catalog.ProductRepository) *QueryService {
	return &QueryService{lots: lots, inwards: inwards, outwards: outwards, products: products}
}

// ScanByCode finds the lot whose barcode or IMEI equals code
func (s *QueryService) ScanByCode(ctx context.Context, code string) (*LotResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Scan code is required")
	}
	lot, err := s.lots.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, inventory.NewLotNotFoundError("code " + code)
		}
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// GetLot returns one lot by id
func (s *QueryService) GetLot(ctx context.Context, id uint64) (*LotResponse, error) {
	lot, err := s.lots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, inventory.NewLotNotFoundError(fmt.Sprintf("lot id %d", id))
		}
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// ListLots lists lots, optionally narrowed by status, product and location
func (s *QueryService) ListLots(ctx context.Context, f ListLotsFilter) (shared.Paginated[LotResponse], error) {
	filter := pageFilter(f.Page, f.PageSize)
	if f.Status != "" {
		status := inventory.LotStatus(strings.ToUpper(f.Status))
		if !status.IsValid() {
			return shared.Paginated[LotResponse]{}, shared.NewDomainError("INVALID_INPUT", "Unknown lot status: "+f.Status)
		}
		filter.Filters["status"] = string(status)
	}
	if f.ProductID != 0 {
		filter.Filters["product_id"] = f.ProductID
	}
	if f.Location != "" {
		filter.Filters["stock_location"] = f.Location
	}

	lots, total, err := s.lots.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[LotResponse]{}, err
	}
	items := make([]LotResponse, len(lots))
	for i := range lots {
		items[i] = ToLotResponse(&lots[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// InwardHistory lists inward lines with their register headers, newest first
func (s *QueryService) InwardHistory(ctx context.Context, page, pageSize int) (shared.Paginated[inventory.InwardLine], error) {
	filter := pageFilter(page, pageSize)
	lines, total, err := s.inwards.ListLines(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.InwardLine]{}, err
	}
	return shared.NewPaginated(lines, total, filter.Page, filter.PageSize), nil
}

// OutwardHistory lists outward lines with their register headers, newest first
func (s *QueryService) OutwardHistory(ctx context.Context, page, pageSize int) (shared.Paginated[inventory.OutwardLine], error) {
	filter := pageFilter(page, pageSize)
	lines, total, err := s.outwards.ListLines(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.OutwardLine]{}, err
	}
	return shared.NewPaginated(lines, total, filter.Page, filter.PageSize), nil
}

// LowStock returns every product whose in-stock total is at or below its
// min threshold, ordered by product id.
func (s *QueryService) LowStock(ctx context.Context) ([]LowStockEntry, error) {
	products, err := s.products.FindWithThreshold(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []LowStockEntry{}, nil
	}
	sums, err := s.lots.SumAvailableByProduct(ctx)
	if err != nil {
		return nil, err
	}
	return lowStockEntries(products, sums), nil
}

// CountLowStock returns the number of products LowStock would list
func (s *QueryService) CountLowStock(ctx context.Context) (int64, error) {
	entries, err := s.LowStock(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

func lowStockEntries(products []catalog.ProductMaster, sums map[uint64]decimal.Decimal) []LowStockEntry {
	out := make([]LowStockEntry, 0)
	for i := range products {
		p := &products[i]
		available := sums[p.ID]
		if !p.IsLow(available) {
			continue
		}
		out = append(out, LowStockEntry{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Available:    available,
			MinThreshold: p.MinThreshold,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func pageFilter(page, pageSize int) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	return filter
}
