package entity

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderServed, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal orders no longer hold their table.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

type OrderPriority string

const (
	PriorityLow    OrderPriority = "low"
	PriorityNormal OrderPriority = "normal"
	PriorityHigh   OrderPriority = "high"
)

func (p OrderPriority) Valid() bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

type Order struct {
	gorm.Model
	TableID *uint  `gorm:"index" json:"tableId"` // nil once archived
	Table   *Table `json:"-"`

	Status   OrderStatus   `gorm:"size:20;default:'pending'" json:"status"`
	Priority OrderPriority `gorm:"size:10;default:'normal'" json:"priority"`

	// Money in minor units. Total = Subtotal + Tax - Discount.
	Subtotal       int64 `json:"subtotal"`
	TaxAmount      int64 `json:"taxAmount"`
	DiscountAmount int64 `json:"discountAmount"`
	TotalAmount    int64 `json:"totalAmount"`

	PromotionID *uint      `json:"promotionId,omitempty"`
	Promotion   *Promotion `json:"-"`

	ReadyAt  *time.Time `json:"readyAt,omitempty"`
	ServedAt *time.Time `json:"servedAt,omitempty"`

	CreatedBy uint `json:"createdBy"`

	Items    []OrderItem `json:"-"` // preload on detail only
	Payments []Payment   `json:"-"`
	Bill     *Bill       `gorm:"foreignKey:OrderID" json:"-"`
}
