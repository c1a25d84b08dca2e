package inventory

import (
	"strings"
	"time"

	"github.com/stockledger/backend/internal/domain/shared"
)

// StockTransfer records a lot moving between locations
type StockTransfer struct {
	shared.BaseEntity
	TransferDate  time.Time `gorm:"not null;index"`
	ProductItemID uint64    `gorm:"not null;index"`
	FromLocation  string    `gorm:"type:varchar(100);not null"`
	ToLocation    string    `gorm:"type:varchar(100);not null"`
	TransferBy    string    `gorm:"type:varchar(100)"`
	Remarks       string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewStockTransfer records the relocation of lot from its current location.
// It must be created before the lot is relocated.
func NewStockTransfer(lot *ProductItem, fromLocation, toLocation, transferBy, remarks string, date time.Time) (*StockTransfer, error) {
	to := strings.TrimSpace(toLocation)
	if to == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Target location cannot be empty")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &StockTransfer{
		BaseEntity:    shared.NewBaseEntity(),
		TransferDate:  date,
		ProductItemID: lot.ID,
		FromLocation:  trimOrDefault(fromLocation, lot.StockLocation),
		ToLocation:    to,
		TransferBy:    strings.TrimSpace(transferBy),
		Remarks:       strings.TrimSpace(remarks),
	}, nil
}
