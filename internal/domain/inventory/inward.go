package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// PurchaseType classifies an inward register
type PurchaseType string

const (
	PurchaseTypePaid        PurchaseType = "PAID_PURCHASE"
	PurchaseTypeReturn      PurchaseType = "RETURN"
	PurchaseTypeReturnGhost PurchaseType = "RETURN_GHOST"
)

// ParsePurchaseType parses a purchase type, defaulting to PAID_PURCHASE when empty
func ParsePurchaseType(s string) (PurchaseType, error) {
	pt := PurchaseType(strings.ToUpper(strings.TrimSpace(s)))
	switch pt {
	case "":
		return PurchaseTypePaid, nil
	case PurchaseTypePaid, PurchaseTypeReturn, PurchaseTypeReturnGhost:
		return pt, nil
	}
	return "", shared.NewDomainErrorWithDetails("INVALID_INPUT", "Unknown purchase type",
		map[string]any{"purchase_type": s})
}

// InwardRegister is the header of a receipt. Its lines are append-only.
type InwardRegister struct {
	shared.BaseEntity
	InwardDate   time.Time    `gorm:"not null;index"`
	PurchaseType PurchaseType `gorm:"type:varchar(30);not null;default:'PAID_PURCHASE'"`
	ReceivedBy   string       `gorm:"type:varchar(100)"`
	Remarks      string       `gorm:"type:text"`
	Items        []InwardItem `gorm:"foreignKey:InwardID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InwardRegister) TableName() string {
	return "inward_registers"
}

// NewInwardRegister creates an inward header. A zero date means now.
func NewInwardRegister(date time.Time, purchaseType PurchaseType, receivedBy, remarks string) *InwardRegister {
	if date.IsZero() {
		date = time.Now()
	}
	if purchaseType == "" {
		purchaseType = PurchaseTypePaid
	}
	return &InwardRegister{
		BaseEntity:   shared.NewBaseEntity(),
		InwardDate:   date,
		PurchaseType: purchaseType,
		ReceivedBy:   strings.TrimSpace(receivedBy),
		Remarks:      strings.TrimSpace(remarks),
	}
}

// InwardItem records one receipt line against one lot
type InwardItem struct {
	ID               uint64          `gorm:"primaryKey;autoIncrement"`
	InwardID         uint64          `gorm:"not null;index"`
	ProductItemID    uint64          `gorm:"not null;index"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitID           *uint64
	CreatedAt        time.Time `gorm:"not null;autoCreateTime"`
}

// TableName returns the table name for GORM
func (InwardItem) TableName() string {
	return "inward_items"
}
