package services

import (
	"tableside/entity"
	"tableside/pkg/apperr"
	"tableside/repository"

	"gorm.io/gorm"
)

// OrderService drives the order state machine and item mutations. Every item
// mutation recomputes the order's money fields synchronously, inside the same
// transaction, so partial sums are never observable.
type OrderService struct {
	DB     *gorm.DB
	Orders *repository.OrderRepository
	Menu   *repository.MenuRepository
	Bills  *repository.BillingRepository

	// Wired after construction.
	Billing    *BillingService
	TableState *TableService

	Pub Publisher
}

func NewOrderService(
	db *gorm.DB,
	orders *repository.OrderRepository,
	menu *repository.MenuRepository,
	bills *repository.BillingRepository,
	pub Publisher,
) *OrderService {
	return &OrderService{DB: db, Orders: orders, Menu: menu, Bills: bills, Pub: pub}
}

// GetOrCreateActiveOrderTx is the single entry point for "active order for
// this table, else open one". Running inside the caller's transaction keeps
// two concurrent first-item adds from opening duplicate orders.
func (s *OrderService) GetOrCreateActiveOrderTx(tx *gorm.DB, tableID uint, actor uint) (*entity.Order, error) {
	existing, err := s.Orders.GetActiveForTable(tx, tableID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	order := &entity.Order{
		TableID:   &tableID,
		Status:    entity.OrderPending,
		Priority:  entity.PriorityNormal,
		CreatedBy: actor,
	}
	if err := s.Orders.Create(tx, order); err != nil {
		return nil, err
	}
	if err := s.TableState.OnOrderOpenedTx(tx, tableID); err != nil {
		return nil, err
	}
	return order, nil
}

// guardMutableTx rejects item mutations once a bill snapshot exists or the
// order left its active phase.
func (s *OrderService) guardMutableTx(tx *gorm.DB, order *entity.Order) error {
	if order.Status.Terminal() {
		return apperr.Precondition("order is %s", order.Status)
	}
	bill, err := s.Bills.GetBillByOrder(tx, order.ID)
	if err != nil {
		return err
	}
	if bill != nil {
		return apperr.Precondition("bill already generated for this order")
	}
	return nil
}

type AddItemResult struct {
	Item  *entity.OrderItem `json:"orderItem"`
	Order *entity.Order     `json:"order"`
}

// AddItem appends a menu line to the table's active order, opening the order
// if needed. A combo expands into its components as zero-priced composed
// lines under the combo's own (priced) line.
func (s *OrderService) AddItem(tableID, menuItemID uint, qty int, note string, actor uint) (*AddItemResult, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity", "must be at least 1")
	}

	var out AddItemResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.GetOrCreateActiveOrderTx(tx, tableID, actor)
		if err != nil {
			return err
		}
		if err := s.guardMutableTx(tx, order); err != nil {
			return err
		}

		menu, err := s.Menu.GetWithComponents(tx, menuItemID)
		if err != nil {
			return apperr.NotFound("menu item")
		}
		if !menu.IsActive {
			return apperr.Precondition("menu item is not available")
		}

		item := &entity.OrderItem{
			OrderID:    order.ID,
			MenuItemID: menu.ID,
			Quantity:   qty,
			UnitPrice:  menu.Price,
			TotalPrice: menu.Price * int64(qty),
			Status:     entity.ItemPending,
			Note:       note,
			Kind:       entity.ItemStandalone,
		}
		if err := s.Orders.CreateItem(tx, item); err != nil {
			return err
		}

		if menu.IsCombo {
			for _, comp := range menu.Components {
				child := &entity.OrderItem{
					OrderID:      order.ID,
					MenuItemID:   comp.MenuItemID,
					Quantity:     comp.Quantity * qty,
					UnitPrice:    0,
					TotalPrice:   0,
					Status:       entity.ItemPending,
					Kind:         entity.ItemComposed,
					ParentItemID: &item.ID,
				}
				if err := s.Orders.CreateItem(tx, child); err != nil {
					return err
				}
			}
		}

		updated, err := s.Billing.RecomputeTx(tx, order.ID)
		if err != nil {
			return err
		}
		out.Item = item
		out.Order = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItemQuantity changes a standalone line's quantity; a combo line's
// composed children scale with it.
func (s *OrderService) UpdateItemQuantity(itemID uint, qty int, actor uint) (*entity.Order, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity", "must be at least 1")
	}

	var order *entity.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		item, err := s.Orders.GetItem(tx, itemID)
		if err != nil {
			return apperr.NotFound("order item")
		}
		if item.Kind == entity.ItemComposed {
			return apperr.Validation("itemId", "composed items follow their combo line")
		}

		o, err := s.Orders.Get(tx, item.OrderID)
		if err != nil {
			return err
		}
		if err := s.guardMutableTx(tx, o); err != nil {
			return err
		}

		oldQty := item.Quantity
		if err := s.Orders.UpdateItemQuantity(tx, itemID, qty, item.UnitPrice*int64(qty)); err != nil {
			return err
		}

		// Scale composed children with the parent line.
		children, err := s.Orders.GetItems(tx, item.OrderID)
		if err != nil {
			return err
		}
		for _, ch := range children {
			if ch.ParentItemID == nil || *ch.ParentItemID != itemID {
				continue
			}
			perUnit := ch.Quantity / oldQty
			if err := s.Orders.UpdateItemQuantity(tx, ch.ID, perUnit*qty, 0); err != nil {
				return err
			}
		}

		order, err = s.Billing.RecomputeTx(tx, item.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RemoveItem deletes a line (and its composed children). Removing the last
// line of an unbilled order removes the order itself and frees the table.
func (s *OrderService) RemoveItem(itemID uint, actor uint) (*entity.Order, error) {
	var order *entity.Order
	var tableEvt *Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		item, err := s.Orders.GetItem(tx, itemID)
		if err != nil {
			return apperr.NotFound("order item")
		}
		if item.Kind == entity.ItemComposed {
			return apperr.Validation("itemId", "composed items follow their combo line")
		}

		o, err := s.Orders.Get(tx, item.OrderID)
		if err != nil {
			return err
		}
		if err := s.guardMutableTx(tx, o); err != nil {
			return err
		}

		if err := s.Orders.DeleteItem(tx, itemID); err != nil {
			return err
		}

		remaining, err := s.Orders.CountItems(tx, o.ID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			tableID := o.TableID
			if err := s.Orders.Delete(tx, o.ID); err != nil {
				return err
			}
			if tableID != nil {
				tableEvt, err = s.TableState.OnOrderClosedTx(tx, *tableID, o.ID, actor)
				if err != nil {
					return err
				}
			}
			order = nil
			return nil
		}

		order, err = s.Billing.RecomputeTx(tx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tableEvt != nil {
		emit(s.Pub, *tableEvt)
	}
	return order, nil
}

// SetPriority updates the kitchen priority and notifies listeners.
func (s *OrderService) SetPriority(orderID uint, p entity.OrderPriority, actor uint) (*entity.Order, error) {
	if !p.Valid() {
		return nil, apperr.Validation("priority", "unknown priority %q", p)
	}

	var order *entity.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, err := s.Orders.Get(tx, orderID)
		if err != nil {
			return apperr.NotFound("order")
		}
		if o.Status.Terminal() {
			return apperr.Precondition("order is %s", o.Status)
		}
		if err := s.Orders.SetPriority(tx, orderID, p); err != nil {
			return err
		}
		o.Priority = p
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(s.Pub, Event{
		Type:     EventOrderPriorityChanged,
		OrderID:  orderID,
		Priority: string(p),
		Actor:    actor,
	})
	return order, nil
}

type OrderDetail struct {
	Order *entity.Order      `json:"order"`
	Items []entity.OrderItem `json:"items"`
}

func (s *OrderService) Detail(orderID uint) (*OrderDetail, error) {
	o, err := s.Orders.Get(s.DB, orderID)
	if err != nil {
		return nil, apperr.NotFound("order")
	}
	items, err := s.Orders.GetItems(s.DB, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: o, Items: items}, nil
}
