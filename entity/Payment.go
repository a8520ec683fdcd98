package entity

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Payment targets exactly one of OrderID / ReservationID (reservation
// deposits). Several completed payments may settle one bill.
type Payment struct {
	gorm.Model
	OrderID       *uint        `gorm:"index" json:"orderId,omitempty"`
	Order         *Order       `json:"-"`
	ReservationID *uint        `gorm:"index" json:"reservationId,omitempty"`
	Reservation   *Reservation `json:"-"`

	Amount    int64         `json:"amount"`
	Method    string        `gorm:"size:30" json:"method"`
	PayerName string        `gorm:"size:100" json:"payerName"`
	Status    PaymentStatus `gorm:"size:20;default:'pending'" json:"status"`
	PaidAt    *time.Time    `json:"paidAt,omitempty"`
}
