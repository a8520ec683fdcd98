package repository

import (
	"errors"
	"time"

	"tableside/entity"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ---------------- Orders ----------------

func (r *OrderRepository) Create(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) Get(tx *gorm.DB, id uint) (*entity.Order, error) {
	var o entity.Order
	if err := tx.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetActiveForTable finds the one order still holding the table, or nil.
func (r *OrderRepository) GetActiveForTable(tx *gorm.DB, tableID uint) (*entity.Order, error) {
	var o entity.Order
	err := tx.Where("table_id = ? AND status NOT IN ?", tableID,
		[]entity.OrderStatus{entity.OrderCompleted, entity.OrderCancelled}).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CountActiveForTable excludes one order id so order-close can ask "anyone
// else still on this table?" inside the same transaction.
func (r *OrderRepository) CountActiveForTable(tx *gorm.DB, tableID uint, excludeOrderID uint) (int64, error) {
	var cnt int64
	err := tx.Model(&entity.Order{}).
		Where("table_id = ? AND id <> ? AND status NOT IN ?", tableID, excludeOrderID,
			[]entity.OrderStatus{entity.OrderCompleted, entity.OrderCancelled}).
		Count(&cnt).Error
	return cnt, err
}

// UpdateStatusGuard flips status only from the expected current value.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID uint, from, to entity.OrderStatus) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// SaveTotals persists the four derived money fields in one update.
func (r *OrderRepository) SaveTotals(tx *gorm.DB, orderID uint, subtotal, tax, discount, total int64) error {
	return tx.Model(&entity.Order{}).Where("id = ?", orderID).Updates(map[string]any{
		"subtotal":        subtotal,
		"tax_amount":      tax,
		"discount_amount": discount,
		"total_amount":    total,
	}).Error
}

func (r *OrderRepository) SetPromotion(tx *gorm.DB, orderID uint, promotionID *uint, discount int64) error {
	return tx.Model(&entity.Order{}).Where("id = ?", orderID).Updates(map[string]any{
		"promotion_id":    promotionID,
		"discount_amount": discount,
	}).Error
}

func (r *OrderRepository) SetPriority(tx *gorm.DB, orderID uint, p entity.OrderPriority) error {
	return tx.Model(&entity.Order{}).Where("id = ?", orderID).Update("priority", p).Error
}

// StampReadyAt sets ready_at once; later transitions never overwrite it.
func (r *OrderRepository) StampReadyAt(tx *gorm.DB, orderID uint, at time.Time) error {
	return tx.Model(&entity.Order{}).
		Where("id = ? AND ready_at IS NULL", orderID).
		Update("ready_at", at).Error
}

func (r *OrderRepository) StampServedAt(tx *gorm.DB, orderID uint, at time.Time) error {
	return tx.Model(&entity.Order{}).
		Where("id = ? AND served_at IS NULL", orderID).
		Update("served_at", at).Error
}

// Delete removes an order and its items (unbilled orders only; caller checks).
func (r *OrderRepository) Delete(tx *gorm.DB, orderID uint) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&entity.OrderItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&entity.Order{}, orderID).Error
}

func (r *OrderRepository) ListForTable(tableID uint, limit int) ([]entity.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []entity.Order
	err := r.DB.Where("table_id = ?", tableID).
		Order("id DESC").Limit(limit).
		Find(&out).Error
	return out, err
}

// ---------------- Order items ----------------

func (r *OrderRepository) CreateItem(tx *gorm.DB, oi *entity.OrderItem) error {
	return tx.Create(oi).Error
}

func (r *OrderRepository) GetItem(tx *gorm.DB, itemID uint) (*entity.OrderItem, error) {
	var oi entity.OrderItem
	if err := tx.First(&oi, itemID).Error; err != nil {
		return nil, err
	}
	return &oi, nil
}

func (r *OrderRepository) GetItems(tx *gorm.DB, orderID uint) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := tx.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *OrderRepository) UpdateItemQuantity(tx *gorm.DB, itemID uint, qty int, totalPrice int64) error {
	return tx.Model(&entity.OrderItem{}).Where("id = ?", itemID).Updates(map[string]any{
		"quantity":    qty,
		"total_price": totalPrice,
	}).Error
}

func (r *OrderRepository) UpdateItemStatus(tx *gorm.DB, itemID uint, s entity.OrderItemStatus) error {
	return tx.Model(&entity.OrderItem{}).Where("id = ?", itemID).Update("status", s).Error
}

// DeleteItem removes an item together with its composed children.
func (r *OrderRepository) DeleteItem(tx *gorm.DB, itemID uint) error {
	if err := tx.Where("parent_item_id = ?", itemID).Delete(&entity.OrderItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&entity.OrderItem{}, itemID).Error
}

func (r *OrderRepository) CountItems(tx *gorm.DB, orderID uint) (int64, error) {
	var cnt int64
	err := tx.Model(&entity.OrderItem{}).Where("order_id = ?", orderID).Count(&cnt).Error
	return cnt, err
}
