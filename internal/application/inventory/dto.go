package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// CreateInwardRequest is the input of an inward register
type CreateInwardRequest struct {
	InwardDate   time.Time
	PurchaseType string
	ReceivedBy   string
	Remarks      string
	Lines        []InwardLineInput
}

// InwardResult reports a committed inward register
type InwardResult struct {
	InwardID     uint64   `json:"inward_id"`
	LinesApplied int      `json:"lines_applied"`
	LinesSkipped int      `json:"lines_skipped"`
	CreatedLots  []uint64 `json:"created_lot_ids"`
	UpdatedLots  []uint64 `json:"updated_lot_ids"`
}

// CreateOutwardRequest is the input of an outward register
type CreateOutwardRequest struct {
	Header inventory.OutwardHeader
	Lines  []OutwardLineInput
}

// OutwardResult reports a committed outward register
type OutwardResult struct {
	OutwardID       uint64   `json:"outward_id"`
	LinesApplied    int      `json:"lines_applied"`
	LinesSkipped    int      `json:"lines_skipped"`
	ExhaustedLotIDs []uint64 `json:"exhausted_lot_ids"`
	VehicleUsageID  *uint64  `json:"vehicle_usage_id,omitempty"`
}

// CreateTransferRequest is the input of a stock transfer
type CreateTransferRequest struct {
	ProductItemID uint64
	FromLocation  string
	ToLocation    string
	TransferBy    string
	Remarks       string
	TransferDate  time.Time
}

// TransferResult reports a committed stock transfer
type TransferResult struct {
	TransferID   uint64 `json:"transfer_id"`
	LotID        uint64 `json:"lot_id"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
}

// LotResponse is the API view of a stock lot
type LotResponse struct {
	ID                uint64          `json:"id"`
	ProductID         uint64          `json:"product_id"`
	Barcode           *string         `json:"barcode,omitempty"`
	IMEI              *string         `json:"imei,omitempty"`
	BatchID           *string         `json:"batch_id,omitempty"`
	UnitID            *uint64         `json:"unit_id,omitempty"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	StockLocation     string          `json:"stock_location"`
	Status            string          `json:"status"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToLotResponse converts a lot to its API view
func ToLotResponse(p *inventory.ProductItem) LotResponse {
	return LotResponse{
		ID:                p.ID,
		ProductID:         p.ProductID,
		Barcode:           p.Barcode,
		IMEI:              p.IMEI,
		BatchID:           p.BatchID,
		UnitID:            p.UnitID,
		TotalQuantity:     p.TotalQuantity,
		AvailableQuantity: p.AvailableQuantity,
		StockLocation:     p.StockLocation,
		Status:            string(p.Status),
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// LowStockEntry reports a product whose available stock is at or below its threshold
type LowStockEntry struct {
	ProductID    uint64          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Available    decimal.Decimal `json:"available"`
	MinThreshold decimal.Decimal `json:"min_threshold"`
}

// ListLotsFilter narrows a lot listing
type ListLotsFilter struct {
	Status    string
	ProductID uint64
	Location  string
	Page      int
	PageSize  int
}
