package entity

import (
	"time"

	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

type Promotion struct {
	gorm.Model
	Code   string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Detail string `json:"detail"`

	DiscountType  DiscountType `gorm:"size:20;not null" json:"discountType"`
	DiscountValue int64        `json:"discountValue"` // percent, or minor units for fixed_amount
	MinOrder      int64        `json:"minOrder"`

	StartAt  *time.Time `json:"startAt,omitempty"`
	EndAt    *time.Time `json:"endAt,omitempty"`
	IsActive bool       `gorm:"default:true" json:"isActive"`

	CreatedBy uint `json:"createdBy"`
}

// ActiveAt reports whether the promotion can be applied at t.
func (p *Promotion) ActiveAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartAt != nil && t.Before(*p.StartAt) {
		return false
	}
	if p.EndAt != nil && t.After(*p.EndAt) {
		return false
	}
	return true
}
