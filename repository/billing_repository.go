package repository

import (
	"errors"
	"time"

	"tableside/entity"

	"gorm.io/gorm"
)

type BillingRepository struct {
	DB *gorm.DB
}

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{DB: db}
}

// ---------------- Bills ----------------

func (r *BillingRepository) CreateBill(tx *gorm.DB, b *entity.Bill) error {
	return tx.Create(b).Error
}

func (r *BillingRepository) GetBill(tx *gorm.DB, id uint) (*entity.Bill, error) {
	var b entity.Bill
	if err := tx.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBillByOrder returns nil when no bill has been generated yet.
func (r *BillingRepository) GetBillByOrder(tx *gorm.DB, orderID uint) (*entity.Bill, error) {
	var b entity.Bill
	err := tx.Where("order_id = ?", orderID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BillingRepository) UpdateBillPayment(tx *gorm.DB, billID uint, paid int64, status entity.BillPaymentStatus, paidAt *time.Time) error {
	updates := map[string]any{
		"paid_amount":    paid,
		"payment_status": status,
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	return tx.Model(&entity.Bill{}).Where("id = ?", billID).Updates(updates).Error
}

// ---------------- Payments ----------------

func (r *BillingRepository) CreatePayment(tx *gorm.DB, p *entity.Payment) error {
	return tx.Create(p).Error
}

func (r *BillingRepository) ListPaymentsForOrder(orderID uint) ([]entity.Payment, error) {
	var out []entity.Payment
	err := r.DB.Where("order_id = ?", orderID).Order("id ASC").Find(&out).Error
	return out, err
}

// ---------------- Tax settings ----------------

// GetActiveTaxSetting returns nil when no policy is active (treated as free).
func (r *BillingRepository) GetActiveTaxSetting(tx *gorm.DB) (*entity.TaxSetting, error) {
	var ts entity.TaxSetting
	err := tx.Where("is_active = ?", true).First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
