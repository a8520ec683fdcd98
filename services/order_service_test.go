package services

import (
	"testing"

	"tableside/entity"
	"tableside/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemOpensOneOrderPerTable(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O1", 1, 4)
	dish := e.menuItem(t, "Noodles", 4500)

	first, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)
	assert.Equal(t, entity.TableOccupied, e.reloadTable(t, tab.ID).Status, "first item occupies the table")

	second, err := e.Orders.AddItem(tab.ID, dish.ID, 2, "extra spicy", actor)
	require.NoError(t, err)
	assert.Equal(t, first.Order.ID, second.Order.ID, "items land on the same active order")

	var cnt int64
	require.NoError(t, e.DB.Model(&entity.Order{}).
		Where("table_id = ? AND status NOT IN ?", tab.ID,
			[]entity.OrderStatus{entity.OrderCompleted, entity.OrderCancelled}).
		Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt, "at most one active order per table")

	assert.Equal(t, int64(3*4500), second.Order.Subtotal)
	assert.Equal(t, second.Order.Subtotal+second.Order.TaxAmount-second.Order.DiscountAmount, second.Order.TotalAmount)
}

func TestRemoveLastItemClosesOrderAndTable(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O2", 1, 4)
	dish := e.menuItem(t, "Noodles", 4500)

	res, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)

	order, err := e.Orders.RemoveItem(res.Item.ID, actor)
	require.NoError(t, err)
	assert.Nil(t, order, "order disappears with its last item")

	assert.Equal(t, entity.TableAvailable, e.reloadTable(t, tab.ID).Status)

	var cnt int64
	require.NoError(t, e.DB.Model(&entity.Order{}).Count(&cnt).Error)
	assert.Zero(t, cnt)
}

func TestOrderTransitions(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O3", 1, 4)
	dish := e.menuItem(t, "Noodles", 4500)

	res, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)
	orderID := res.Order.ID

	// pending → ready skips preparing: rejected
	_, err = e.Orders.UpdateStatus(orderID, entity.OrderReady, actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))

	_, err = e.Orders.UpdateStatus(orderID, entity.OrderStatus("bogus"), actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	o, err := e.Orders.UpdateStatus(orderID, entity.OrderPreparing, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPreparing, o.Status)

	// re-entrant transition is a no-op
	o, err = e.Orders.UpdateStatus(orderID, entity.OrderPreparing, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPreparing, o.Status)

	_, err = e.Orders.UpdateStatus(orderID, entity.OrderReady, actor)
	require.NoError(t, err)
	ready1 := e.reloadOrder(t, orderID).ReadyAt
	require.NotNil(t, ready1)

	_, err = e.Orders.UpdateStatus(orderID, entity.OrderServed, actor)
	require.NoError(t, err)
	require.NotNil(t, e.reloadOrder(t, orderID).ServedAt)
}

// Table occupied by a preparing order; once the order runs to completed and
// no other active order references the table, the table frees up.
func TestOrderCompletionFreesTable(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O4", 1, 4)
	dish := e.menuItem(t, "Noodles", 4500)

	res, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)
	orderID := res.Order.ID

	for _, s := range []entity.OrderStatus{entity.OrderPreparing, entity.OrderReady, entity.OrderServed, entity.OrderCompleted} {
		_, err = e.Orders.UpdateStatus(orderID, s, actor)
		require.NoError(t, err)
	}

	assert.Equal(t, entity.TableAvailable, e.reloadTable(t, tab.ID).Status)
}

func TestCancelUnbilledOrderLeavesNoHistory(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O5", 1, 4)
	dish := e.menuItem(t, "Noodles", 4500)

	res, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)

	_, err = e.Orders.UpdateStatus(res.Order.ID, entity.OrderCancelled, actor)
	require.NoError(t, err)

	assert.Equal(t, entity.TableAvailable, e.reloadTable(t, tab.ID).Status)

	var cnt int64
	require.NoError(t, e.DB.Model(&entity.Order{}).Where("id = ?", res.Order.ID).Count(&cnt).Error)
	assert.Zero(t, cnt, "unbilled cancelled orders are soft-deleted")
}

func TestItemStatusAutoReadiesOrder(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O6", 1, 4)
	dish := e.menuItem(t, "Noodles", 4500)
	soup := e.menuItem(t, "Soup", 3000)

	r1, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)
	r2, err := e.Orders.AddItem(tab.ID, soup.ID, 1, "", actor)
	require.NoError(t, err)
	orderID := r1.Order.ID

	_, err = e.Orders.UpdateStatus(orderID, entity.OrderPreparing, actor)
	require.NoError(t, err)

	o, err := e.Orders.UpdateItemStatus(r1.Item.ID, entity.ItemReady, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPreparing, o.Status, "one of two items ready is not enough")
	assert.Nil(t, e.reloadOrder(t, orderID).ReadyAt)

	o, err = e.Orders.UpdateItemStatus(r2.Item.ID, entity.ItemReady, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderReady, o.Status, "all items ready promotes the order")
	require.NotNil(t, e.reloadOrder(t, orderID).ReadyAt)

	// items never move backwards
	_, err = e.Orders.UpdateItemStatus(r1.Item.ID, entity.ItemPending, actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestComboExpandsIntoComposedItems(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O7", 1, 4)
	burger := e.menuItem(t, "Burger", 6000)
	fries := e.menuItem(t, "Fries", 2500)
	set := e.combo(t, "Burger Set", 7500, burger, fries)

	res, err := e.Orders.AddItem(tab.ID, set.ID, 2, "", actor)
	require.NoError(t, err)

	var items []entity.OrderItem
	require.NoError(t, e.DB.Where("order_id = ?", res.Order.ID).Order("id ASC").Find(&items).Error)
	require.Len(t, items, 3, "combo line plus two composed children")

	parent := items[0]
	assert.Equal(t, entity.ItemStandalone, parent.Kind)
	assert.Equal(t, int64(15000), parent.TotalPrice)

	for _, ch := range items[1:] {
		assert.Equal(t, entity.ItemComposed, ch.Kind)
		require.NotNil(t, ch.ParentItemID)
		assert.Equal(t, parent.ID, *ch.ParentItemID)
		assert.Zero(t, ch.UnitPrice, "composed items carry no price of their own")
		assert.Equal(t, 2, ch.Quantity)
	}

	assert.Equal(t, int64(15000), res.Order.Subtotal, "only the combo line prices in")

	// children scale with the parent quantity
	order, err := e.Orders.UpdateItemQuantity(parent.ID, 3, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(22500), order.Subtotal)
	var child entity.OrderItem
	require.NoError(t, e.DB.Where("parent_item_id = ?", parent.ID).First(&child).Error)
	assert.Equal(t, 3, child.Quantity)

	// composed children cannot be mutated directly
	_, err = e.Orders.UpdateItemQuantity(child.ID, 5, actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = e.Orders.RemoveItem(child.ID, actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// removing the combo removes its children too
	_, err = e.Orders.RemoveItem(parent.ID, actor)
	require.NoError(t, err)
	var cnt int64
	require.NoError(t, e.DB.Model(&entity.OrderItem{}).Where("parent_item_id = ?", parent.ID).Count(&cnt).Error)
	assert.Zero(t, cnt)
}

func TestSetPriority(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O8", 1, 4)
	dish := e.menuItem(t, "Noodles", 4500)

	res, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)

	o, err := e.Orders.SetPriority(res.Order.ID, entity.PriorityHigh, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.PriorityHigh, o.Priority)

	_, err = e.Orders.SetPriority(res.Order.ID, entity.OrderPriority("urgent"), actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestNewOrderAfterCompletion(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "O9", 1, 4)
	dish := e.menuItem(t, "Noodles", 4500)

	res, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)
	first := res.Order.ID

	for _, s := range []entity.OrderStatus{entity.OrderPreparing, entity.OrderReady, entity.OrderServed, entity.OrderCompleted} {
		_, err = e.Orders.UpdateStatus(first, s, actor)
		require.NoError(t, err)
	}

	res2, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)
	assert.NotEqual(t, first, res2.Order.ID, "a completed order no longer collects items")
}
