package services

import (
	"time"

	"tableside/entity"
	"tableside/pkg/apperr"
	"tableside/repository"

	"gorm.io/gorm"
)

// TableService is the only component allowed to mutate table status.
// available ⇄ reserved ⇄ occupied; maintenance is reachable from available
// only, by explicit admin action, and leads back to available only.
type TableService struct {
	DB           *gorm.DB
	Tables       *repository.TableRepository
	Orders       *repository.OrderRepository
	Reservations *repository.ReservationRepository

	// Wired after construction; same-package collaborators.
	Scheduler *ReservationService
	Lifecycle *OrderService

	Pub Publisher
}

func NewTableService(
	db *gorm.DB,
	tables *repository.TableRepository,
	orders *repository.OrderRepository,
	reservations *repository.ReservationRepository,
	pub Publisher,
) *TableService {
	return &TableService{DB: db, Tables: tables, Orders: orders, Reservations: reservations, Pub: pub}
}

type BookRequest struct {
	CustomerName    string
	CustomerPhone   string
	PartySize       int
	StartTime       time.Time
	DurationMinutes int
	DepositAmount   int64
	WithOrder       bool // seat the party now and open an order immediately
}

type BookResult struct {
	Table       *entity.Table       `json:"table"`
	Reservation *entity.Reservation `json:"reservation"`
	Order       *entity.Order       `json:"order,omitempty"`
}

// Book claims an available table. The conflict check re-runs inside the
// writing transaction, so of two racing bookings only the first committer
// wins; the loser sees ConflictError.
func (s *TableService) Book(tableID uint, req BookRequest, actor uint) (*BookResult, error) {
	if req.PartySize < 1 {
		return nil, apperr.Validation("partySize", "must be at least 1")
	}
	if req.DurationMinutes < 1 {
		return nil, apperr.Validation("durationMinutes", "must be at least 1")
	}

	var out BookResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		table, err := s.Tables.Get(tx, tableID)
		if err != nil {
			return apperr.NotFound("table")
		}
		if !table.IsActive {
			return apperr.Precondition("table is not active")
		}
		if table.Status != entity.TableAvailable {
			return apperr.Conflict("table %s is %s", table.Number, table.Status)
		}
		if req.PartySize < table.MinCapacity || req.PartySize > table.Capacity {
			return apperr.Validation("partySize", "outside table capacity range [%d, %d]",
				table.MinCapacity, table.Capacity)
		}

		if conflicting, err := s.Scheduler.FindConflictTx(tx, tableID, req.StartTime, req.DurationMinutes, 0); err != nil {
			return err
		} else if conflicting != nil {
			return apperr.Conflict("table already reserved from %s for %d minutes",
				conflicting.StartTime.Format(time.RFC3339), conflicting.DurationMinutes)
		}

		res := &entity.Reservation{
			TableID:         tableID,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			PartySize:       req.PartySize,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			DepositAmount:   req.DepositAmount,
			Status:          entity.ReservationConfirmed,
			CreatedBy:       actor,
		}
		if req.WithOrder {
			res.Status = entity.ReservationSeated
		}
		if err := s.Reservations.Create(tx, res); err != nil {
			return err
		}

		if req.DepositAmount > 0 {
			dep := &entity.Payment{
				ReservationID: &res.ID,
				Amount:        req.DepositAmount,
				Method:        "deposit",
				Status:        entity.PaymentPending,
			}
			if err := tx.Create(dep).Error; err != nil {
				return err
			}
		}

		target := entity.TableReserved
		if req.WithOrder {
			target = entity.TableOccupied
		}
		affected, err := s.Tables.UpdateStatusGuard(tx, tableID, entity.TableAvailable, target)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("table was booked by a concurrent request")
		}
		table.Status = target

		if req.WithOrder {
			order, err := s.Lifecycle.GetOrCreateActiveOrderTx(tx, tableID, actor)
			if err != nil {
				return err
			}
			out.Order = order
		}

		out.Table = table
		out.Reservation = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(s.Pub, Event{
		Type:      EventTableStatusChanged,
		TableID:   tableID,
		OldStatus: string(entity.TableAvailable),
		NewStatus: string(out.Table.Status),
		Actor:     actor,
	})
	return &out, nil
}

// Release frees a table for the next party. Fails while any active order
// still references it.
func (s *TableService) Release(tableID uint, actor uint) (*entity.Table, error) {
	var table *entity.Table
	var released entity.TableStatus
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		t, err := s.Tables.Get(tx, tableID)
		if err != nil {
			return apperr.NotFound("table")
		}
		if t.Status == entity.TableMaintenance {
			return apperr.Precondition("table is under maintenance")
		}

		active, err := s.Orders.CountActiveForTable(tx, tableID, 0)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperr.Precondition("table has %d active order(s)", active)
		}

		if t.Status != entity.TableAvailable {
			released = t.Status
			if err := s.Tables.SetStatus(tx, tableID, entity.TableAvailable); err != nil {
				return err
			}
			t.Status = entity.TableAvailable
		}
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if released != "" {
		emit(s.Pub, Event{
			Type:      EventTableStatusChanged,
			TableID:   tableID,
			OldStatus: string(released),
			NewStatus: string(entity.TableAvailable),
			Actor:     actor,
		})
	}
	return table, nil
}

// OnOrderOpenedTx marks the table occupied when an order attaches to it.
// Runs inside the caller's transaction.
func (s *TableService) OnOrderOpenedTx(tx *gorm.DB, tableID uint) error {
	t, err := s.Tables.Get(tx, tableID)
	if err != nil {
		return apperr.NotFound("table")
	}
	switch t.Status {
	case entity.TableOccupied:
		return nil
	case entity.TableAvailable, entity.TableReserved:
		affected, err := s.Tables.UpdateStatusGuard(tx, tableID, t.Status, entity.TableOccupied)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("table state changed concurrently")
		}
		return nil
	default:
		return apperr.Precondition("table is under maintenance")
	}
}

// OnOrderClosedTx reverts the table to available once no other active order
// references it. The count and the write share the caller's transaction so a
// concurrent new order on the same table cannot slip between them. The
// returned event, if any, is the caller's to emit once its transaction
// commits; publishing before commit would announce a change a rollback may
// undo.
func (s *TableService) OnOrderClosedTx(tx *gorm.DB, tableID, closedOrderID, actor uint) (*Event, error) {
	remaining, err := s.Orders.CountActiveForTable(tx, tableID, closedOrderID)
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return nil, nil
	}

	t, err := s.Tables.Get(tx, tableID)
	if err != nil {
		return nil, err
	}
	if t.Status == entity.TableMaintenance || t.Status == entity.TableAvailable {
		return nil, nil
	}
	if err := s.Tables.SetStatus(tx, tableID, entity.TableAvailable); err != nil {
		return nil, err
	}
	return &Event{
		Type:      EventTableStatusChanged,
		TableID:   tableID,
		OldStatus: string(t.Status),
		NewStatus: string(entity.TableAvailable),
		Actor:     actor,
	}, nil
}

// UpdateStatus is the administrative override. Maintenance is only reachable
// from available and only leads back to available; everything else is the
// caller's responsibility (Release/OnOrderClosed cover the happy path).
func (s *TableService) UpdateStatus(tableID uint, newStatus entity.TableStatus, actor uint) (*entity.Table, error) {
	if !newStatus.Valid() {
		return nil, apperr.Validation("status", "unknown table status %q", newStatus)
	}

	var table *entity.Table
	var old entity.TableStatus
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		t, err := s.Tables.Get(tx, tableID)
		if err != nil {
			return apperr.NotFound("table")
		}
		if t.Status == newStatus {
			table = t
			return nil
		}
		if newStatus == entity.TableMaintenance && t.Status != entity.TableAvailable {
			return apperr.Precondition("maintenance requires an available table")
		}
		if t.Status == entity.TableMaintenance && newStatus != entity.TableAvailable {
			return apperr.Precondition("a table in maintenance can only return to available")
		}

		old = t.Status
		if err := s.Tables.SetStatus(tx, tableID, newStatus); err != nil {
			return err
		}
		t.Status = newStatus
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if old != "" {
		emit(s.Pub, Event{
			Type:      EventTableStatusChanged,
			TableID:   tableID,
			OldStatus: string(old),
			NewStatus: string(newStatus),
			Actor:     actor,
		})
	}
	return table, nil
}
