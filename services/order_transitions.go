package services

import (
	"time"

	"tableside/entity"
	"tableside/pkg/apperr"

	"gorm.io/gorm"
)

// orderTransitions lists the legal next states. Cancelled is reachable from
// every non-terminal state.
var orderTransitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderPending:   {entity.OrderPreparing, entity.OrderCancelled},
	entity.OrderPreparing: {entity.OrderReady, entity.OrderCancelled},
	entity.OrderReady:     {entity.OrderServed, entity.OrderCancelled},
	entity.OrderServed:    {entity.OrderCompleted, entity.OrderCancelled},
}

func transitionAllowed(from, to entity.OrderStatus) bool {
	for _, t := range orderTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// UpdateStatus advances the order state machine. A transition to the current
// status is a no-op; ready/served stamp their timestamp exactly once;
// completed and cancelled run the table-close check in the same transaction.
func (s *OrderService) UpdateStatus(orderID uint, to entity.OrderStatus, actor uint) (*entity.Order, error) {
	if !to.Valid() {
		return nil, apperr.Validation("status", "unknown order status %q", to)
	}

	var order *entity.Order
	var from entity.OrderStatus
	var tableEvt *Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, err := s.Orders.Get(tx, orderID)
		if err != nil {
			return apperr.NotFound("order")
		}
		if o.Status == to {
			order = o
			return nil // re-entrant transition
		}
		if !transitionAllowed(o.Status, to) {
			return apperr.Precondition("cannot transition from %s to %s", o.Status, to)
		}
		from = o.Status

		affected, err := s.Orders.UpdateStatusGuard(tx, orderID, o.Status, to)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("order changed concurrently")
		}

		now := time.Now()
		switch to {
		case entity.OrderReady:
			if err := s.Orders.StampReadyAt(tx, orderID, now); err != nil {
				return err
			}
		case entity.OrderServed:
			if err := s.Orders.StampServedAt(tx, orderID, now); err != nil {
				return err
			}
		case entity.OrderCompleted, entity.OrderCancelled:
			if o.TableID != nil {
				tableEvt, err = s.TableState.OnOrderClosedTx(tx, *o.TableID, orderID, actor)
				if err != nil {
					return err
				}
			}
		}

		// Cancelling an order that never reached billing leaves no history.
		if to == entity.OrderCancelled {
			bill, err := s.Bills.GetBillByOrder(tx, orderID)
			if err != nil {
				return err
			}
			if bill == nil {
				if err := tx.Delete(&entity.Order{}, orderID).Error; err != nil {
					return err
				}
			}
		}

		o.Status = to
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if from != "" {
		emit(s.Pub, Event{
			Type:      EventOrderStatusChanged,
			OrderID:   orderID,
			OldStatus: string(from),
			NewStatus: string(to),
			Actor:     actor,
		})
	}
	if tableEvt != nil {
		emit(s.Pub, *tableEvt)
	}
	return order, nil
}

var itemStatusRank = map[entity.OrderItemStatus]int{
	entity.ItemPending:   0,
	entity.ItemPreparing: 1,
	entity.ItemReady:     2,
}

// UpdateItemStatus moves a line forward through pending → preparing → ready.
// When the last line reaches ready the order auto-transitions to ready and
// its ready time is stamped (once).
func (s *OrderService) UpdateItemStatus(itemID uint, to entity.OrderItemStatus, actor uint) (*entity.Order, error) {
	if !to.Valid() {
		return nil, apperr.Validation("status", "unknown item status %q", to)
	}

	var order *entity.Order
	var autoFrom entity.OrderStatus
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		item, err := s.Orders.GetItem(tx, itemID)
		if err != nil {
			return apperr.NotFound("order item")
		}
		if item.Status == to {
			order, err = s.Orders.Get(tx, item.OrderID)
			return err
		}
		if itemStatusRank[to] < itemStatusRank[item.Status] {
			return apperr.Precondition("item cannot move back from %s to %s", item.Status, to)
		}

		o, err := s.Orders.Get(tx, item.OrderID)
		if err != nil {
			return err
		}
		if o.Status.Terminal() {
			return apperr.Precondition("order is %s", o.Status)
		}

		if err := s.Orders.UpdateItemStatus(tx, itemID, to); err != nil {
			return err
		}

		if to == entity.ItemReady {
			items, err := s.Orders.GetItems(tx, o.ID)
			if err != nil {
				return err
			}
			allReady := true
			for _, it := range items {
				if it.Status != entity.ItemReady {
					allReady = false
					break
				}
			}
			if allReady && (o.Status == entity.OrderPending || o.Status == entity.OrderPreparing) {
				affected, err := s.Orders.UpdateStatusGuard(tx, o.ID, o.Status, entity.OrderReady)
				if err != nil {
					return err
				}
				if affected == 0 {
					return apperr.Conflict("order changed concurrently")
				}
				if err := s.Orders.StampReadyAt(tx, o.ID, time.Now()); err != nil {
					return err
				}
				autoFrom = o.Status
				o.Status = entity.OrderReady
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if autoFrom != "" {
		emit(s.Pub, Event{
			Type:      EventOrderStatusChanged,
			OrderID:   order.ID,
			OldStatus: string(autoFrom),
			NewStatus: string(entity.OrderReady),
			Actor:     actor,
		})
	}
	return order, nil
}

// CompleteForPaymentTx closes an order as a side effect of its bill reaching
// paid. Shares the payment's transaction so the table never looks occupied
// with no active order behind it. The returned events are the caller's to
// emit once that transaction commits.
func (s *OrderService) CompleteForPaymentTx(tx *gorm.DB, orderID, actor uint) ([]Event, error) {
	o, err := s.Orders.Get(tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, nil
	}

	affected, err := s.Orders.UpdateStatusGuard(tx, orderID, o.Status, entity.OrderCompleted)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperr.Conflict("order changed concurrently")
	}

	events := []Event{{
		Type:      EventOrderStatusChanged,
		OrderID:   orderID,
		OldStatus: string(o.Status),
		NewStatus: string(entity.OrderCompleted),
		Actor:     actor,
	}}
	if o.TableID != nil {
		tableEvt, err := s.TableState.OnOrderClosedTx(tx, *o.TableID, orderID, actor)
		if err != nil {
			return nil, err
		}
		if tableEvt != nil {
			events = append(events, *tableEvt)
		}
	}
	return events, nil
}
