package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// UnitResponse is the API view of a unit
type UnitResponse struct {
	ID               uint64          `json:"id"`
	Name             string          `json:"name"`
	BaseUnit         string          `json:"base_unit"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	Option           string          `json:"option"`
}

// ProductOption is a product as offered in upload templates
type ProductOption struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// CatalogSnapshot lists the values spreadsheet templates offer as dropdowns
type CatalogSnapshot struct {
	Units         []UnitResponse  `json:"units"`
	Products      []ProductOption `json:"products"`
	PurchaseTypes []string        `json:"purchase_types"`
}

// CatalogService exposes the read-only catalog used by the ledger
type CatalogService struct {
	units    catalog.UnitRepository
	products catalog.ProductRepository
}

// NewCatalogService creates a CatalogService
func NewCatalogService(units catalog.UnitRepository, products catalog.ProductRepository) *CatalogService {
	return &CatalogService{units: units, products: products}
}

// ListUnits returns every unit
func (s *CatalogService) ListUnits(ctx context.Context) ([]UnitResponse, error) {
	units, err := s.units.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	out := make([]UnitResponse, len(units))
	for i := range units {
		out[i] = toUnitResponse(&units[i])
	}
	return out, nil
}

// Snapshot returns units and products rendered as "ID:<n> - <label>" options
func (s *CatalogService) Snapshot(ctx context.Context) (*CatalogSnapshot, error) {
	units, err := s.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	opts := make([]ProductOption, len(products))
	for i := range products {
		opts[i] = ProductOption{
			ID:     products[i].ID,
			Name:   products[i].Name,
			Option: products[i].OptionLabel(),
		}
	}
	return &CatalogSnapshot{
		Units:    units,
		Products: opts,
		PurchaseTypes: []string{
			string(inventory.PurchaseTypePaid),
			string(inventory.PurchaseTypeReturn),
			string(inventory.PurchaseTypeReturnGhost),
		},
	}, nil
}

func toUnitResponse(u *catalog.Unit) UnitResponse {
	return UnitResponse{
		ID:               u.ID,
		Name:             u.Name,
		BaseUnit:         u.BaseUnit,
		ConversionFactor: u.ConversionFactor,
		Option:           u.OptionLabel(),
	}
}
