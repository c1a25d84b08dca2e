package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// OutwardRegister is the header of a consumption, typically a job done on a vehicle.
type OutwardRegister struct {
	shared.BaseEntity
	OutwardDate    time.Time     `gorm:"not null;index"`
	VehicleID      *uint64       `gorm:"index"`
	VehicleRegNo   string        `gorm:"type:varchar(50)"`
	VinNo          string        `gorm:"type:varchar(50)"`
	SalesCategory  string        `gorm:"type:varchar(100)"`
	InchargePerson string        `gorm:"type:varchar(100)"`
	Remarks        string        `gorm:"type:text"`
	Items          []OutwardItem `gorm:"foreignKey:OutwardID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OutwardRegister) TableName() string {
	return "outward_registers"
}

// OutwardHeader holds the caller-supplied outward header fields
type OutwardHeader struct {
	Date           time.Time
	VehicleID      *uint64
	VehicleRegNo   string
	VinNo          string
	SalesCategory  string
	InchargePerson string
	Remarks        string
}

// NewOutwardRegister creates an outward header. A zero date means now.
func NewOutwardRegister(h OutwardHeader) *OutwardRegister {
	date := h.Date
	if date.IsZero() {
		date = time.Now()
	}
	return &OutwardRegister{
		BaseEntity:     shared.NewBaseEntity(),
		OutwardDate:    date,
		VehicleID:      h.VehicleID,
		VehicleRegNo:   strings.TrimSpace(h.VehicleRegNo),
		VinNo:          strings.TrimSpace(h.VinNo),
		SalesCategory:  strings.TrimSpace(h.SalesCategory),
		InchargePerson: strings.TrimSpace(h.InchargePerson),
		Remarks:        strings.TrimSpace(h.Remarks),
	}
}

// OutwardItem records one consumption line against one lot
type OutwardItem struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement"`
	OutwardID     uint64          `gorm:"not null;index"`
	ProductItemID uint64          `gorm:"not null;index"`
	QuantityUsed  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitID        *uint64
	CreatedAt     time.Time `gorm:"not null;autoCreateTime"`
}

// TableName returns the table name for GORM
func (OutwardItem) TableName() string {
	return "outward_items"
}
