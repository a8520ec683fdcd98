package entity

import (
	"gorm.io/gorm"
)

type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "pending"
	ItemPreparing OrderItemStatus = "preparing"
	ItemReady     OrderItemStatus = "ready"
)

func (s OrderItemStatus) Valid() bool {
	return s == ItemPending || s == ItemPreparing || s == ItemReady
}

// OrderItemKind tags the item variant: a standalone line, or a composed line
// that exists only as part of a combo and carries no price of its own.
type OrderItemKind string

const (
	ItemStandalone OrderItemKind = "standalone"
	ItemComposed   OrderItemKind = "composed"
)

type OrderItem struct {
	gorm.Model
	OrderID uint  `gorm:"index;not null" json:"orderId"`
	Order   Order `json:"-"`

	MenuItemID uint     `json:"menuItemId"`
	MenuItem   MenuItem `json:"-"` // preload when the name is needed

	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unitPrice"`
	TotalPrice int64 `json:"totalPrice"` // UnitPrice * Quantity

	Status OrderItemStatus `gorm:"size:20;default:'pending'" json:"status"`
	Note   string          `json:"note"`

	Kind         OrderItemKind `gorm:"size:12;default:'standalone'" json:"kind"`
	ParentItemID *uint         `gorm:"index" json:"parentItemId,omitempty"` // set iff Kind == composed
}
