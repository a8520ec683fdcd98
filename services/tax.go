package services

import (
	"math"

	"tableside/entity"
)

// Pure money math shared by order recomputation and ad-hoc booking estimates.
// Amounts are minor units; rates are percentages.

func percentOf(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate / 100))
}

// Tax returns 0 when no policy is active or the policy is free.
func Tax(subtotal int64, setting *entity.TaxSetting) int64 {
	if setting == nil || setting.Type == entity.TaxFree {
		return 0
	}
	return percentOf(subtotal, setting.TaxRate)
}

// ServiceCharge is the bill-side rate, distinct from the order's tax.
func ServiceCharge(subtotal int64, setting *entity.TaxSetting) int64 {
	if setting == nil || setting.Type == entity.TaxFree {
		return 0
	}
	return percentOf(subtotal, setting.ServiceRate)
}

// Discount computes a promotion's value against a subtotal. The result is
// capped at the subtotal so a total can never go negative.
func Discount(subtotal int64, p *entity.Promotion) int64 {
	if p == nil {
		return 0
	}
	var d int64
	switch p.DiscountType {
	case entity.DiscountPercentage:
		d = percentOf(subtotal, float64(p.DiscountValue))
	case entity.DiscountFixed:
		d = p.DiscountValue
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}
