package entity

import (
	"gorm.io/gorm"
)

type MenuItem struct {
	gorm.Model
	Name     string `gorm:"size:100;not null" json:"name"`
	Price    int64  `json:"price"` // minor units
	IsCombo  bool   `gorm:"default:false" json:"isCombo"`
	IsActive bool   `gorm:"default:true" json:"isActive"`

	// Components of a combo; ordering a combo expands each component into a
	// zero-priced composed order item under the combo line.
	Components []ComboComponent `gorm:"foreignKey:ComboID" json:"-"`
}

type ComboComponent struct {
	gorm.Model
	ComboID    uint     `gorm:"index;not null" json:"comboId"`
	MenuItemID uint     `gorm:"not null" json:"menuItemId"`
	MenuItem   MenuItem `json:"-"`
	Quantity   int      `gorm:"default:1" json:"quantity"`
}
