package handler

import (
	"time"

	"github.com/shopspring/decimal"
	appcatalog "github.com/stockledger/backend/internal/application/catalog"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// CreateInwardRequest is the body of POST /inventory/inward
// @Description Receipt of goods: a register header and its lines
type CreateInwardRequest struct {
	InwardDate   string              `json:"inward_date" example:"2024-03-01"`
	PurchaseType string              `json:"purchase_type" example:"PAID_PURCHASE"`
	ReceivedBy   string              `json:"received_by" binding:"max=100" example:"Ravi"`
	Remarks      string              `json:"remarks"`
	Items        []InwardItemRequest `json:"items" binding:"required,min=1,dive"`
}

// InwardItemRequest is one receipt line. Lines with a zero quantity are
// skipped; a negative quantity rejects the register.
type InwardItemRequest struct {
	ProductID        uint64          `json:"product_id" example:"1"`
	QuantityReceived decimal.Decimal `json:"quantity_received" example:"15"`
	UnitID           *uint64         `json:"unit_id,omitempty" example:"2"`
	Unit             string          `json:"unit,omitempty" example:"Meter"`
	Barcode          string          `json:"barcode,omitempty" binding:"max=100" example:"B1"`
	IMEI             string          `json:"imei,omitempty" binding:"max=50"`
	BatchID          string          `json:"batch_id,omitempty" binding:"max=100"`
	StockLocation    string          `json:"stock_location,omitempty" binding:"max=100"`
}

func (r InwardItemRequest) toInput() appinv.InwardLineInput {
	return appinv.InwardLineInput{
		ProductID: r.ProductID,
		Quantity:  r.QuantityReceived,
		Unit:      appcatalog.UnitRef{ID: r.UnitID, Hint: r.Unit},
		Identity:  inventory.NewLotIdentity(r.Barcode, r.IMEI),
		BatchID:   r.BatchID,
		Location:  r.StockLocation,
	}
}

// CreateOutwardRequest is the body of POST /inventory/outward
// @Description Consumption of goods: a register header and its lines
type CreateOutwardRequest struct {
	OutwardDate    string               `json:"outward_date" example:"2024-03-02"`
	VehicleID      *uint64              `json:"vehicle_id,omitempty" example:"1"`
	VehicleRegNo   string               `json:"vehicle_reg_no" binding:"max=50" example:"KA-01-7777"`
	VinNo          string               `json:"vin_no" binding:"max=50"`
	SalesCategory  string               `json:"sales_category" binding:"max=100" example:"Workshop"`
	InchargePerson string               `json:"incharge_person" binding:"max=100"`
	Remarks        string               `json:"remarks"`
	Items          []OutwardItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OutwardItemRequest is one consumption line. The lot is named by id, or
// by barcode or IMEI when no id is given.
type OutwardItemRequest struct {
	ProductItemID uint64          `json:"product_item_id,omitempty" example:"1"`
	Barcode       string          `json:"barcode,omitempty" binding:"max=100"`
	IMEI          string          `json:"imei,omitempty" binding:"max=50"`
	QuantityUsed  decimal.Decimal `json:"quantity_used" binding:"decimal_gt0" example:"2.5"`
	UnitID        *uint64         `json:"unit_id,omitempty" example:"2"`
	Unit          string          `json:"unit,omitempty"`
}

func (r OutwardItemRequest) toInput() appinv.OutwardLineInput {
	return appinv.OutwardLineInput{
		Lot: appinv.LotRef{
			LotID:    r.ProductItemID,
			Identity: inventory.NewLotIdentity(r.Barcode, r.IMEI),
		},
		Quantity: r.QuantityUsed,
		Unit:     appcatalog.UnitRef{ID: r.UnitID, Hint: r.Unit},
	}
}

// ListItemsQuery filters GET /inventory/items
type ListItemsQuery struct {
	dto.PageRequest
	Status    string `form:"status" binding:"omitempty,max=20"`
	ProductID uint64 `form:"product_id"`
	Location  string `form:"location" binding:"omitempty,max=100"`
}

// ScanQuery is the query of GET /inventory/scan
type ScanQuery struct {
	Code string `form:"code" binding:"required,max=100"`
}

// CreateTransferRequest is the body of POST /transfers
// @Description Relocation of a lot; quantities are untouched
type CreateTransferRequest struct {
	TransferDate  string `json:"transfer_date" example:"2024-03-03"`
	ProductItemID uint64 `json:"product_item_id" binding:"required" example:"1"`
	FromLocation  string `json:"from_location" binding:"max=100" example:"Main Store"`
	ToLocation    string `json:"to_location" binding:"required,max=100" example:"Bay 2"`
	TransferBy    string `json:"transfer_by" binding:"max=100"`
	Remarks       string `json:"remarks"`
}

// TransferResponse is the API view of a stock transfer
type TransferResponse struct {
	ID            uint64 `json:"id"`
	TransferDate  string `json:"transfer_date"`
	ProductItemID uint64 `json:"product_item_id"`
	FromLocation  string `json:"from_location"`
	ToLocation    string `json:"to_location"`
	TransferBy    string `json:"transfer_by"`
	Remarks       string `json:"remarks"`
	CreatedAt     string `json:"created_at"`
}

func toTransferResponse(t *inventory.StockTransfer) TransferResponse {
	return TransferResponse{
		ID:            t.ID,
		TransferDate:  t.TransferDate.Format(time.RFC3339),
		ProductItemID: t.ProductItemID,
		FromLocation:  t.FromLocation,
		ToLocation:    t.ToLocation,
		TransferBy:    t.TransferBy,
		Remarks:       t.Remarks,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
}
