package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"tableside/entity"
	"tableside/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Table{},
		&entity.Reservation{},
		&entity.MenuItem{}, &entity.ComboComponent{},
		&entity.Order{}, &entity.OrderItem{},
		&entity.Bill{}, &entity.Payment{},
		&entity.Promotion{},
		&entity.TaxSetting{},
	))
	return db
}

type testEnv struct {
	DB           *gorm.DB
	Tables       *TableService
	Reservations *ReservationService
	Orders       *OrderService
	Billing      *BillingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	tableRepo := repository.NewTableRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	promoRepo := repository.NewPromotionRepository(db)
	menuRepo := repository.NewMenuRepository(db)

	pub := NopPublisher{}

	tables := NewTableService(db, tableRepo, orderRepo, reservationRepo, pub)
	reservations := NewReservationService(db, reservationRepo, tableRepo, orderRepo, pub)
	billing := NewBillingService(db, orderRepo, billingRepo, promoRepo, pub)
	orders := NewOrderService(db, orderRepo, menuRepo, billingRepo, pub)

	tables.Scheduler = reservations
	tables.Lifecycle = orders
	reservations.TableState = tables
	reservations.Lifecycle = orders
	orders.Billing = billing
	orders.TableState = tables
	billing.Lifecycle = orders

	return &testEnv{DB: db, Tables: tables, Reservations: reservations, Orders: orders, Billing: billing}
}

func (e *testEnv) table(t *testing.T, number string, minCap, cap int) *entity.Table {
	t.Helper()
	tab := &entity.Table{Number: number, MinCapacity: minCap, Capacity: cap, Status: entity.TableAvailable, IsActive: true}
	require.NoError(t, e.DB.Create(tab).Error)
	return tab
}

func (e *testEnv) menuItem(t *testing.T, name string, price int64) *entity.MenuItem {
	t.Helper()
	m := &entity.MenuItem{Name: name, Price: price, IsActive: true}
	require.NoError(t, e.DB.Create(m).Error)
	return m
}

func (e *testEnv) combo(t *testing.T, name string, price int64, components ...*entity.MenuItem) *entity.MenuItem {
	t.Helper()
	m := &entity.MenuItem{Name: name, Price: price, IsCombo: true, IsActive: true}
	require.NoError(t, e.DB.Create(m).Error)
	for _, comp := range components {
		require.NoError(t, e.DB.Create(&entity.ComboComponent{ComboID: m.ID, MenuItemID: comp.ID, Quantity: 1}).Error)
	}
	return m
}

// activeTax replaces the active tax policy.
func (e *testEnv) activeTax(t *testing.T, taxRate, serviceRate float64) {
	t.Helper()
	require.NoError(t, e.DB.Model(&entity.TaxSetting{}).Where("is_active = ?", true).Update("is_active", false).Error)
	require.NoError(t, e.DB.Create(&entity.TaxSetting{
		Type: entity.TaxManual, TaxRate: taxRate, ServiceRate: serviceRate, IsActive: true,
	}).Error)
}

func (e *testEnv) freeTax(t *testing.T) {
	t.Helper()
	require.NoError(t, e.DB.Model(&entity.TaxSetting{}).Where("is_active = ?", true).Update("is_active", false).Error)
	require.NoError(t, e.DB.Create(&entity.TaxSetting{Type: entity.TaxFree, IsActive: true}).Error)
}

func (e *testEnv) reloadTable(t *testing.T, id uint) *entity.Table {
	t.Helper()
	var tab entity.Table
	require.NoError(t, e.DB.First(&tab, id).Error)
	return &tab
}

func (e *testEnv) reloadOrder(t *testing.T, id uint) *entity.Order {
	t.Helper()
	var o entity.Order
	require.NoError(t, e.DB.First(&o, id).Error)
	return &o
}
