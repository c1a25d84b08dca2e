package fleet

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// CodeVehicleNotFound is raised when an outward references an unknown vehicle
const CodeVehicleNotFound = "VEHICLE_NOT_FOUND"

// ReferenceTypeOutward tags usage entries logged by an outward register
const ReferenceTypeOutward = "Outward"

// Vehicle is a fleet vehicle stock is consumed on
type Vehicle struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	Name          string    `gorm:"type:varchar(100);not null"`
	Mode          string    `gorm:"type:varchar(50)"`
	Make          string    `gorm:"type:varchar(100)"`
	VehicleNumber string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status        string    `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (Vehicle) TableName() string {
	return "vehicles"
}

// VehicleUsage is a log entry of a vehicle being used for a job
type VehicleUsage struct {
	shared.BaseEntity
	VehicleID     uint64           `gorm:"not null;index"`
	UsageDate     time.Time        `gorm:"not null"`
	Purpose       string           `gorm:"type:varchar(200)"`
	ReferenceType string           `gorm:"type:varchar(50);index:idx_vehicle_usage_reference,priority:1"`
	ReferenceID   uint64           `gorm:"index:idx_vehicle_usage_reference,priority:2"`
	DriverName    string           `gorm:"type:varchar(100)"`
	StartKm       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EndKm         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalKm       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Remarks       string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (VehicleUsage) TableName() string {
	return "vehicle_usages"
}

// NewOutwardUsage builds the usage entry logged alongside an outward register
func NewOutwardUsage(vehicleID, outwardID uint64, date time.Time, salesCategory, driver string) *VehicleUsage {
	purpose := "Outward"
	if c := strings.TrimSpace(salesCategory); c != "" {
		purpose = "Outward - " + c
	}
	return &VehicleUsage{
		BaseEntity:    shared.NewBaseEntity(),
		VehicleID:     vehicleID,
		UsageDate:     date,
		Purpose:       purpose,
		ReferenceType: ReferenceTypeOutward,
		ReferenceID:   outwardID,
		DriverName:    strings.TrimSpace(driver),
		Remarks:       fmt.Sprintf("Auto-logged from Outward #%d", outwardID),
	}
}

// NewVehicleNotFoundError reports an unknown vehicle reference
func NewVehicleNotFoundError(id uint64) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(CodeVehicleNotFound,
		fmt.Sprintf("Vehicle %d not found", id),
		map[string]any{"vehicle_id": id})
}
