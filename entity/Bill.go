package entity

import (
	"time"

	"gorm.io/gorm"
)

type BillPaymentStatus string

const (
	BillPending  BillPaymentStatus = "pending"
	BillPartial  BillPaymentStatus = "partial"
	BillPaid     BillPaymentStatus = "paid"
	BillRefunded BillPaymentStatus = "refunded"
)

// Bill snapshots an order's totals at generation time. One bill per order.
type Bill struct {
	gorm.Model
	OrderID uint  `gorm:"uniqueIndex;not null" json:"orderId"`
	Order   Order `json:"-"`

	Subtotal       int64 `json:"subtotal"`
	TaxAmount      int64 `json:"taxAmount"`
	ServiceCharge  int64 `json:"serviceCharge"`
	DiscountAmount int64 `json:"discountAmount"`
	TotalAmount    int64 `json:"totalAmount"`

	PaymentStatus BillPaymentStatus `gorm:"size:20;default:'pending'" json:"paymentStatus"`
	PaidAmount    int64             `json:"paidAmount"`
	PaidAt        *time.Time        `json:"paidAt,omitempty"`
}
