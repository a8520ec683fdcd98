package services

import (
	"testing"
	"time"

	"tableside/entity"
	"tableside/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const actor = uint(1)

// seatWithItems books a table with an order and adds the given menu items
// (qty 1 each), returning the active order.
func seatWithItems(t *testing.T, e *testEnv, tab *entity.Table, items ...*entity.MenuItem) *entity.Order {
	t.Helper()
	out, err := e.Tables.Book(tab.ID, BookRequest{
		PartySize: tab.MinCapacity, StartTime: time.Now(), DurationMinutes: 90, WithOrder: true,
	}, actor)
	require.NoError(t, err)
	order := out.Order
	for _, m := range items {
		res, err := e.Orders.AddItem(tab.ID, m.ID, 1, "", actor)
		require.NoError(t, err)
		order = res.Order
	}
	return order
}

// Two items at 100.00 and 50.00 with 10% tax: subtotal 150.00, tax 15.00,
// total 165.00; a 10% promotion then discounts 15.00 down to 150.00.
func TestRecomputeAndPercentagePromotion(t *testing.T) {
	e := newTestEnv(t)
	e.activeTax(t, 10, 0)
	tab := e.table(t, "B1", 1, 4)
	steak := e.menuItem(t, "Steak", 10000)
	wine := e.menuItem(t, "Wine", 5000)

	order := seatWithItems(t, e, tab, steak, wine)
	assert.Equal(t, int64(15000), order.Subtotal)
	assert.Equal(t, int64(1500), order.TaxAmount)
	assert.Equal(t, int64(16500), order.TotalAmount)

	require.NoError(t, e.DB.Create(&entity.Promotion{
		Code: "SAVE10", DiscountType: entity.DiscountPercentage, DiscountValue: 10, IsActive: true,
	}).Error)

	out, err := e.Billing.ApplyPromotion(order.ID, "SAVE10", actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), out.DiscountAmount)
	assert.Equal(t, int64(15000), out.NewTotal)

	// total == subtotal + tax - discount after every mutation
	o := e.reloadOrder(t, order.ID)
	assert.Equal(t, o.Subtotal+o.TaxAmount-o.DiscountAmount, o.TotalAmount)
}

func TestApplyPromotionErrors(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B2", 1, 4)
	dish := e.menuItem(t, "Dish", 3000)
	order := seatWithItems(t, e, tab, dish)

	_, err := e.Billing.ApplyPromotion(order.ID, "NOPE", actor)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, e.DB.Create(&entity.Promotion{
		Code: "EXPIRED", DiscountType: entity.DiscountPercentage, DiscountValue: 10,
		IsActive: true, EndAt: &past,
	}).Error)
	_, err = e.Billing.ApplyPromotion(order.ID, "EXPIRED", actor)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "expired window counts as not found")

	require.NoError(t, e.DB.Create(&entity.Promotion{
		Code: "BIGSPENDER", DiscountType: entity.DiscountPercentage, DiscountValue: 10,
		MinOrder: 100000, IsActive: true,
	}).Error)
	_, err = e.Billing.ApplyPromotion(order.ID, "BIGSPENDER", actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

// A fixed discount larger than the subtotal is capped at the subtotal, so
// the total never goes negative.
func TestFixedDiscountCap(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B3", 1, 4)
	dish := e.menuItem(t, "Dish", 2000)
	order := seatWithItems(t, e, tab, dish)

	require.NoError(t, e.DB.Create(&entity.Promotion{
		Code: "HUGE", DiscountType: entity.DiscountFixed, DiscountValue: 50000, IsActive: true,
	}).Error)

	out, err := e.Billing.ApplyPromotion(order.ID, "HUGE", actor)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), out.DiscountAmount)
	assert.Equal(t, int64(0), out.NewTotal)
}

func TestGenerateBillOnceAndServiceCharge(t *testing.T) {
	e := newTestEnv(t)
	e.activeTax(t, 10, 10)
	tab := e.table(t, "B4", 1, 4)
	dish := e.menuItem(t, "Dish", 10000)
	order := seatWithItems(t, e, tab, dish)

	bill, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), bill.Subtotal)
	assert.Equal(t, int64(1000), bill.TaxAmount)
	assert.Equal(t, int64(1000), bill.ServiceCharge, "service charge uses its own rate, not a second tax")
	assert.Equal(t, int64(12000), bill.TotalAmount)
	assert.Equal(t, entity.BillPending, bill.PaymentStatus)

	_, err = e.Billing.GenerateBill(order.ID, actor)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), "a second bill is a conflict")
}

// Order total 200.00 split as 120.00 + 80.00: both payments complete, the
// bill flips to paid, the order completes, and the table frees up.
func TestSplitPaymentExact(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B5", 1, 4)
	dish := e.menuItem(t, "Feast", 20000)
	order := seatWithItems(t, e, tab, dish)

	_, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)

	payments, err := e.Billing.ApplySplitPayment(order.ID, []SplitInput{
		{Amount: 12000, Method: "cash", PayerName: "A"},
		{Amount: 8000, Method: "card", PayerName: "B"},
	}, actor)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, entity.PaymentCompleted, p.Status)
	}

	var bill entity.Bill
	require.NoError(t, e.DB.Where("order_id = ?", order.ID).First(&bill).Error)
	assert.Equal(t, entity.BillPaid, bill.PaymentStatus)
	assert.Equal(t, int64(20000), bill.PaidAmount)

	assert.Equal(t, entity.OrderCompleted, e.reloadOrder(t, order.ID).Status)
	assert.Equal(t, entity.TableAvailable, e.reloadTable(t, tab.ID).Status)
}

// A mismatched split sum is rejected wholesale: no payment rows survive.
func TestSplitPaymentSumMismatch(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B6", 1, 4)
	dish := e.menuItem(t, "Feast", 20000)
	order := seatWithItems(t, e, tab, dish)

	_, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)

	_, err = e.Billing.ApplySplitPayment(order.ID, []SplitInput{
		{Amount: 12000, Method: "cash"},
		{Amount: 7000, Method: "card"},
	}, actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var cnt int64
	require.NoError(t, e.DB.Model(&entity.Payment{}).Where("order_id = ?", order.ID).Count(&cnt).Error)
	assert.Zero(t, cnt, "failed split must not leave payment rows behind")

	var bill entity.Bill
	require.NoError(t, e.DB.Where("order_id = ?", order.ID).First(&bill).Error)
	assert.Equal(t, entity.BillPending, bill.PaymentStatus)
}

// One minor unit of drift is inside tolerance.
func TestSplitPaymentTolerance(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B7", 1, 4)
	dish := e.menuItem(t, "Feast", 20000)
	order := seatWithItems(t, e, tab, dish)

	_, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)

	_, err = e.Billing.ApplySplitPayment(order.ID, []SplitInput{
		{Amount: 10000, Method: "cash"},
		{Amount: 9999, Method: "card"},
	}, actor)
	assert.NoError(t, err)
}

// A split settles what is still owed, not the original bill total: after a
// partial payment the earlier amount stays counted, and every completed
// payment row adds up to exactly the bill total.
func TestSplitPaymentAfterPartialPayment(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B10", 1, 4)
	dish := e.menuItem(t, "Feast", 20000)
	order := seatWithItems(t, e, tab, dish)

	bill, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)

	_, err = e.Billing.RecordPayment(bill.ID, 5000, "cash", actor)
	require.NoError(t, err)

	// the full bill total no longer matches what is owed
	_, err = e.Billing.ApplySplitPayment(order.ID, []SplitInput{
		{Amount: 12000, Method: "cash"},
		{Amount: 8000, Method: "card"},
	}, actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	var cnt int64
	require.NoError(t, e.DB.Model(&entity.Payment{}).Where("order_id = ?", order.ID).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt, "a rejected split leaves only the earlier payment")

	payments, err := e.Billing.ApplySplitPayment(order.ID, []SplitInput{
		{Amount: 7000, Method: "cash"},
		{Amount: 8000, Method: "card"},
	}, actor)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	var b entity.Bill
	require.NoError(t, e.DB.Where("order_id = ?", order.ID).First(&b).Error)
	assert.Equal(t, entity.BillPaid, b.PaymentStatus)
	assert.Equal(t, int64(20000), b.PaidAmount)

	var total int64
	require.NoError(t, e.DB.Model(&entity.Payment{}).
		Where("order_id = ? AND status = ?", order.ID, entity.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error)
	assert.Equal(t, b.PaidAmount, total, "completed payments drive paid_amount")

	assert.Equal(t, entity.OrderCompleted, e.reloadOrder(t, order.ID).Status)
	assert.Equal(t, entity.TableAvailable, e.reloadTable(t, tab.ID).Status)
}

func TestSplitPaymentRejectedOnRefundedBill(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B11", 1, 4)
	dish := e.menuItem(t, "Feast", 20000)
	order := seatWithItems(t, e, tab, dish)

	bill, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)
	require.NoError(t, e.DB.Model(&entity.Bill{}).Where("id = ?", bill.ID).
		Update("payment_status", entity.BillRefunded).Error)

	_, err = e.Billing.ApplySplitPayment(order.ID, []SplitInput{
		{Amount: 20000, Method: "cash"},
	}, actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestRecordPaymentPartialThenPaid(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B8", 1, 4)
	dish := e.menuItem(t, "Feast", 20000)
	order := seatWithItems(t, e, tab, dish)

	bill, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)

	b, err := e.Billing.RecordPayment(bill.ID, 5000, "cash", actor)
	require.NoError(t, err)
	assert.Equal(t, entity.BillPartial, b.PaymentStatus)
	assert.Equal(t, int64(5000), b.PaidAmount)
	assert.Equal(t, entity.TableOccupied, e.reloadTable(t, tab.ID).Status, "partial payment keeps the table")

	b, err = e.Billing.RecordPayment(bill.ID, 15000, "card", actor)
	require.NoError(t, err)
	assert.Equal(t, entity.BillPaid, b.PaymentStatus)
	require.NotNil(t, b.PaidAt)

	assert.Equal(t, entity.OrderCompleted, e.reloadOrder(t, order.ID).Status)
	assert.Equal(t, entity.TableAvailable, e.reloadTable(t, tab.ID).Status)

	_, err = e.Billing.RecordPayment(bill.ID, 100, "cash", actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err), "paid bills accept no more payments")
}

func TestItemMutationBlockedAfterBill(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "B9", 1, 4)
	dish := e.menuItem(t, "Dish", 5000)
	order := seatWithItems(t, e, tab, dish)

	_, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)

	_, err = e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}
