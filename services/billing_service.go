package services

import (
	"time"

	"tableside/entity"
	"tableside/pkg/apperr"
	"tableside/repository"

	"gorm.io/gorm"
)

// BillingService derives all money fields from order contents and settles
// bills. Payment completion closes the order and frees the table in the same
// transaction.
type BillingService struct {
	DB     *gorm.DB
	Orders *repository.OrderRepository
	Bills  *repository.BillingRepository
	Promos *repository.PromotionRepository

	// Wired after construction.
	Lifecycle *OrderService

	Pub Publisher
}

func NewBillingService(
	db *gorm.DB,
	orders *repository.OrderRepository,
	bills *repository.BillingRepository,
	promos *repository.PromotionRepository,
	pub Publisher,
) *BillingService {
	return &BillingService{DB: db, Orders: orders, Bills: bills, Promos: promos, Pub: pub}
}

// RecomputeTx rebuilds subtotal/tax/discount/total from the order's items and
// persists the four fields in one update. The discount stays as the applied
// promotion set it, clamped so it can never exceed the subtotal.
func (s *BillingService) RecomputeTx(tx *gorm.DB, orderID uint) (*entity.Order, error) {
	o, err := s.Orders.Get(tx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.Orders.GetItems(tx, orderID)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, it := range items {
		subtotal += it.TotalPrice
	}

	setting, err := s.Bills.GetActiveTaxSetting(tx)
	if err != nil {
		return nil, err
	}
	tax := Tax(subtotal, setting)

	discount := o.DiscountAmount
	if discount > subtotal {
		discount = subtotal
	}

	total := subtotal + tax - discount
	if err := s.Orders.SaveTotals(tx, orderID, subtotal, tax, discount, total); err != nil {
		return nil, err
	}

	o.Subtotal = subtotal
	o.TaxAmount = tax
	o.DiscountAmount = discount
	o.TotalAmount = total
	return o, nil
}

type PromotionResult struct {
	DiscountAmount int64 `json:"discountAmount"`
	NewTotal       int64 `json:"newTotal"`
}

// ApplyPromotion attaches a promotion by code. Re-application replaces the
// prior discount; a promotion applies at most once per order.
func (s *BillingService) ApplyPromotion(orderID uint, code string, actor uint) (*PromotionResult, error) {
	var out PromotionResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, err := s.Orders.Get(tx, orderID)
		if err != nil {
			return apperr.NotFound("order")
		}
		if o.Status.Terminal() {
			return apperr.Precondition("order is %s", o.Status)
		}
		bill, err := s.Bills.GetBillByOrder(tx, orderID)
		if err != nil {
			return err
		}
		if bill != nil {
			return apperr.Precondition("bill already generated for this order")
		}

		promo, err := s.Promos.GetByCode(tx, code)
		if err != nil {
			return err
		}
		if promo == nil || !promo.ActiveAt(time.Now()) {
			return apperr.NotFound("active promotion")
		}
		if o.Subtotal < promo.MinOrder {
			return apperr.Precondition("order subtotal below promotion minimum of %d", promo.MinOrder)
		}

		discount := Discount(o.Subtotal, promo)
		if err := s.Orders.SetPromotion(tx, orderID, &promo.ID, discount); err != nil {
			return err
		}

		updated, err := s.RecomputeTx(tx, orderID)
		if err != nil {
			return err
		}
		out = PromotionResult{DiscountAmount: updated.DiscountAmount, NewTotal: updated.TotalAmount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateBill snapshots the order's totals. The service charge is the
// bill-side rate from the active policy; the order's tax is never applied a
// second time. Generating twice is an error.
func (s *BillingService) GenerateBill(orderID uint, actor uint) (*entity.Bill, error) {
	var bill *entity.Bill
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, err := s.Orders.Get(tx, orderID)
		if err != nil {
			return apperr.NotFound("order")
		}
		if o.Status.Terminal() {
			return apperr.Precondition("order is %s", o.Status)
		}

		existing, err := s.Bills.GetBillByOrder(tx, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("bill already exists for order %d", orderID)
		}

		setting, err := s.Bills.GetActiveTaxSetting(tx)
		if err != nil {
			return err
		}
		service := ServiceCharge(o.Subtotal, setting)

		bill = &entity.Bill{
			OrderID:        orderID,
			Subtotal:       o.Subtotal,
			TaxAmount:      o.TaxAmount,
			ServiceCharge:  service,
			DiscountAmount: o.DiscountAmount,
			TotalAmount:    o.Subtotal + o.TaxAmount + service - o.DiscountAmount,
			PaymentStatus:  entity.BillPending,
		}
		return s.Bills.CreateBill(tx, bill)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

type SplitInput struct {
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	PayerName string `json:"payerName"`
}

// splitTolerance is the accepted absolute difference between the split sum
// and the amount owed, in minor units.
const splitTolerance = 1

// ApplySplitPayment settles the outstanding balance of a bill with several
// payments at once. The sum must match what is still owed — total minus any
// payments already recorded — within tolerance, or nothing is written.
func (s *BillingService) ApplySplitPayment(orderID uint, splits []SplitInput, actor uint) ([]entity.Payment, error) {
	if len(splits) == 0 {
		return nil, apperr.Validation("splits", "at least one split required")
	}
	var sum int64
	for i, sp := range splits {
		if sp.Amount < 1 {
			return nil, apperr.Validation("splits", "split %d amount must be positive", i)
		}
		sum += sp.Amount
	}

	var payments []entity.Payment
	var closeEvents []Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, err := s.Orders.Get(tx, orderID)
		if err != nil {
			return apperr.NotFound("order")
		}
		bill, err := s.Bills.GetBillByOrder(tx, orderID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperr.Precondition("generate the bill before paying")
		}
		if bill.PaymentStatus == entity.BillPaid || bill.PaymentStatus == entity.BillRefunded {
			return apperr.Precondition("bill is already %s", bill.PaymentStatus)
		}

		owed := bill.TotalAmount - bill.PaidAmount
		diff := sum - owed
		if diff < -splitTolerance || diff > splitTolerance {
			return apperr.Validation("splits", "split sum %d does not match amount owed %d", sum, owed)
		}

		now := time.Now()
		for _, sp := range splits {
			p := entity.Payment{
				OrderID:   &o.ID,
				Amount:    sp.Amount,
				Method:    sp.Method,
				PayerName: sp.PayerName,
				Status:    entity.PaymentCompleted,
				PaidAt:    &now,
			}
			if err := s.Bills.CreatePayment(tx, &p); err != nil {
				return err
			}
			payments = append(payments, p)
		}

		if err := s.Bills.UpdateBillPayment(tx, bill.ID, bill.PaidAmount+sum, entity.BillPaid, &now); err != nil {
			return err
		}

		// Settled in full: close the order and free the table atomically.
		closeEvents, err = s.Lifecycle.CompleteForPaymentTx(tx, orderID, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, e := range closeEvents {
		emit(s.Pub, e)
	}
	return payments, nil
}

// RecordPayment applies one payment to a bill. Reaching the bill total marks
// it paid and, as one atomic unit, completes the order and releases the
// table.
func (s *BillingService) RecordPayment(billID uint, amount int64, method string, actor uint) (*entity.Bill, error) {
	if amount < 1 {
		return nil, apperr.Validation("amount", "must be positive")
	}

	var bill *entity.Bill
	var closeEvents []Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		b, err := s.Bills.GetBill(tx, billID)
		if err != nil {
			return apperr.NotFound("bill")
		}
		if b.PaymentStatus == entity.BillPaid || b.PaymentStatus == entity.BillRefunded {
			return apperr.Precondition("bill is already %s", b.PaymentStatus)
		}

		now := time.Now()
		p := entity.Payment{
			OrderID: &b.OrderID,
			Amount:  amount,
			Method:  method,
			Status:  entity.PaymentCompleted,
			PaidAt:  &now,
		}
		if err := s.Bills.CreatePayment(tx, &p); err != nil {
			return err
		}

		paid := b.PaidAmount + amount
		status := entity.BillPartial
		var paidAt *time.Time
		if paid >= b.TotalAmount {
			status = entity.BillPaid
			paidAt = &now
		}
		if err := s.Bills.UpdateBillPayment(tx, billID, paid, status, paidAt); err != nil {
			return err
		}

		if status == entity.BillPaid {
			closeEvents, err = s.Lifecycle.CompleteForPaymentTx(tx, b.OrderID, actor)
			if err != nil {
				return err
			}
		}

		b.PaidAmount = paid
		b.PaymentStatus = status
		b.PaidAt = paidAt
		bill = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, e := range closeEvents {
		emit(s.Pub, e)
	}
	return bill, nil
}

// EstimateTotals is the booking-time quote: same resolver as order
// recomputation, no side effects.
func (s *BillingService) EstimateTotals(subtotal int64) (tax, service, total int64, err error) {
	setting, err := s.Bills.GetActiveTaxSetting(s.DB)
	if err != nil {
		return 0, 0, 0, err
	}
	tax = Tax(subtotal, setting)
	service = ServiceCharge(subtotal, setting)
	return tax, service, subtotal + tax + service, nil
}
