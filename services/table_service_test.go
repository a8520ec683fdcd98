package services

import (
	"testing"

	"tableside/entity"
	"tableside/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookReservesTable(t *testing.T) {
	e := newTestEnv(t)
	tab := e.table(t, "T1", 2, 4)

	out, err := e.Tables.Book(tab.ID, BookRequest{
		CustomerName: "Lee", PartySize: 3, StartTime: at(18, 0), DurationMinutes: 90,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.TableReserved, out.Table.Status)
	assert.Equal(t, entity.ReservationConfirmed, out.Reservation.Status)
	assert.Nil(t, out.Order)

	// the table is no longer available to book
	_, err = e.Tables.Book(tab.ID, BookRequest{
		PartySize: 2, StartTime: at(21, 0), DurationMinutes: 60,
	}, actor)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestBookWithOrderSeatsImmediately(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "T2", 2, 4)

	out, err := e.Tables.Book(tab.ID, BookRequest{
		PartySize: 2, StartTime: at(18, 0), DurationMinutes: 90, WithOrder: true,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.TableOccupied, out.Table.Status)
	assert.Equal(t, entity.ReservationSeated, out.Reservation.Status)
	require.NotNil(t, out.Order)
	assert.Equal(t, entity.OrderPending, out.Order.Status)
}

func TestBookValidation(t *testing.T) {
	e := newTestEnv(t)
	tab := e.table(t, "T3", 2, 4)

	_, err := e.Tables.Book(tab.ID, BookRequest{PartySize: 0, StartTime: at(18, 0), DurationMinutes: 60}, actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.Tables.Book(tab.ID, BookRequest{PartySize: 2, StartTime: at(18, 0), DurationMinutes: 0}, actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.Tables.Book(tab.ID, BookRequest{PartySize: 6, StartTime: at(18, 0), DurationMinutes: 60}, actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "party above capacity")

	_, err = e.Tables.Book(99999, BookRequest{PartySize: 2, StartTime: at(18, 0), DurationMinutes: 60}, actor)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, e.DB.Model(tab).Update("is_active", false).Error)
	_, err = e.Tables.Book(tab.ID, BookRequest{PartySize: 2, StartTime: at(18, 0), DurationMinutes: 60}, actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestReleaseBlockedByActiveOrder(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "T4", 1, 4)
	dish := e.menuItem(t, "Dish", 3000)

	_, err := e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)

	_, err = e.Tables.Release(tab.ID, actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	assert.Equal(t, entity.TableOccupied, e.reloadTable(t, tab.ID).Status)
}

func TestReleaseReservedTable(t *testing.T) {
	e := newTestEnv(t)
	tab := e.table(t, "T5", 2, 4)

	_, err := e.Tables.Book(tab.ID, BookRequest{
		PartySize: 2, StartTime: at(18, 0), DurationMinutes: 90,
	}, actor)
	require.NoError(t, err)

	got, err := e.Tables.Release(tab.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.TableAvailable, got.Status)
}

// Full walk-in flow: book with order, eat, pay — the table comes back
// available without anyone calling Release.
func TestDineInFlowFreesTable(t *testing.T) {
	e := newTestEnv(t)
	e.activeTax(t, 7, 10)
	tab := e.table(t, "T6", 2, 4)
	dish := e.menuItem(t, "Curry", 12000)

	order := seatWithItems(t, e, tab, dish)

	for _, s := range []entity.OrderStatus{entity.OrderPreparing, entity.OrderReady, entity.OrderServed} {
		_, err := e.Orders.UpdateStatus(order.ID, s, actor)
		require.NoError(t, err)
	}

	bill, err := e.Billing.GenerateBill(order.ID, actor)
	require.NoError(t, err)

	_, err = e.Billing.RecordPayment(bill.ID, bill.TotalAmount, "card", actor)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderCompleted, e.reloadOrder(t, order.ID).Status)
	assert.Equal(t, entity.TableAvailable, e.reloadTable(t, tab.ID).Status)
}

func TestMaintenanceTransitions(t *testing.T) {
	e := newTestEnv(t)
	e.freeTax(t)
	tab := e.table(t, "T7", 1, 4)

	got, err := e.Tables.UpdateStatus(tab.ID, entity.TableMaintenance, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.TableMaintenance, got.Status)

	// no bookings, no releases, no occupied jumps while in maintenance
	_, err = e.Tables.Book(tab.ID, BookRequest{PartySize: 2, StartTime: at(18, 0), DurationMinutes: 60}, actor)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	_, err = e.Tables.Release(tab.ID, actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	_, err = e.Tables.UpdateStatus(tab.ID, entity.TableOccupied, actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))

	got, err = e.Tables.UpdateStatus(tab.ID, entity.TableAvailable, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.TableAvailable, got.Status)

	// maintenance is only reachable from available
	dish := e.menuItem(t, "Dish", 3000)
	_, err = e.Orders.AddItem(tab.ID, dish.ID, 1, "", actor)
	require.NoError(t, err)
	_, err = e.Tables.UpdateStatus(tab.ID, entity.TableMaintenance, actor)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))

	_, err = e.Tables.UpdateStatus(tab.ID, entity.TableStatus("broken"), actor)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
