package entity

import (
	"gorm.io/gorm"
)

type TaxType string

const (
	TaxFree   TaxType = "free"
	TaxManual TaxType = "manual"
)

// TaxSetting is the restaurant-wide tax policy. At most one row is active at
// a time; activation deactivates the previous row in the same transaction.
// TaxRate and ServiceRate are deliberately separate percentages: the order
// carries the tax, the bill carries the service charge.
type TaxSetting struct {
	gorm.Model
	Type        TaxType `gorm:"size:10;not null" json:"type"`
	TaxRate     float64 `json:"taxRate"`     // percent, used when Type == manual
	ServiceRate float64 `json:"serviceRate"` // percent applied at bill generation
	IsActive    bool    `gorm:"index" json:"isActive"`
}
