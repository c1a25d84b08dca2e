package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductMaster is the catalog entry a stock lot belongs to. The ledger only
// reads it: to validate product references and to evaluate low stock.
type ProductMaster struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	SKU             *string         `gorm:"column:sku;type:varchar(100);uniqueIndex"`
	Name            string          `gorm:"type:varchar(200);not null"`
	MinThreshold    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ThresholdUnitID *uint64
	CreatedAt       time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ProductMaster) TableName() string {
	return "product_masters"
}

// OptionLabel renders the product as a spreadsheet dropdown value.
func (p *ProductMaster) OptionLabel() string {
	label := p.Name
	if p.SKU != nil && *p.SKU != "" {
		label = *p.SKU + " " + p.Name
	}
	return FormatOption(p.ID, label)
}

// IsLow reports whether the given available total is at or below the
// product's threshold. Products without a threshold are never low.
func (p *ProductMaster) IsLow(available decimal.Decimal) bool {
	if !p.MinThreshold.IsPositive() {
		return false
	}
	return available.LessThanOrEqual(p.MinThreshold)
}
