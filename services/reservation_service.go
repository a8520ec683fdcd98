package services

import (
	"time"

	"tableside/entity"
	"tableside/pkg/apperr"
	"tableside/repository"

	"gorm.io/gorm"
)

// ReservationService owns interval-overlap conflict detection and capacity
// matching for reservation requests.
type ReservationService struct {
	DB           *gorm.DB
	Reservations *repository.ReservationRepository
	Tables       *repository.TableRepository
	Orders       *repository.OrderRepository

	// Wired after construction.
	TableState *TableService
	Lifecycle  *OrderService

	Pub Publisher
}

func NewReservationService(
	db *gorm.DB,
	reservations *repository.ReservationRepository,
	tables *repository.TableRepository,
	orders *repository.OrderRepository,
	pub Publisher,
) *ReservationService {
	return &ReservationService{DB: db, Reservations: reservations, Tables: tables, Orders: orders, Pub: pub}
}

// overlaps reports whether [s1, s1+d1) and [s2, s2+d2) intersect. Touching
// endpoints (end == start) do not conflict.
func overlaps(s1 time.Time, d1 int, s2 time.Time, d2 int) bool {
	e1 := s1.Add(time.Duration(d1) * time.Minute)
	e2 := s2.Add(time.Duration(d2) * time.Minute)
	return s1.Before(e2) && s2.Before(e1)
}

// FindConflictTx scans the table's active reservations for any overlap with
// the requested window. excludeID skips one reservation (status changes on
// an existing booking must not conflict with themselves).
func (s *ReservationService) FindConflictTx(tx *gorm.DB, tableID uint, start time.Time, durationMinutes int, excludeID uint) (*entity.Reservation, error) {
	active, err := s.Reservations.ListActiveForTable(tx, tableID)
	if err != nil {
		return nil, err
	}
	for i := range active {
		r := &active[i]
		if r.ID == excludeID {
			continue
		}
		if overlaps(start, durationMinutes, r.StartTime, r.DurationMinutes) {
			return r, nil
		}
	}
	return nil, nil
}

// CheckAvailability returns conflict-free active tables that fit the party,
// smallest sufficient table first.
func (s *ReservationService) CheckAvailability(start time.Time, durationMinutes, partySize int) ([]entity.Table, error) {
	if partySize < 1 {
		return nil, apperr.Validation("partySize", "must be at least 1")
	}
	if durationMinutes < 1 {
		return nil, apperr.Validation("durationMinutes", "must be at least 1")
	}

	candidates, err := s.Tables.ListActiveForParty(partySize)
	if err != nil {
		return nil, err
	}

	out := make([]entity.Table, 0, len(candidates))
	for _, t := range candidates {
		conflict, err := s.FindConflictTx(s.DB, t.ID, start, durationMinutes, 0)
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

type CreateReservationRequest struct {
	TableID         uint
	CustomerName    string
	CustomerPhone   string
	PartySize       int
	StartTime       time.Time
	DurationMinutes int
	DepositAmount   int64
}

// Create books a future slot. The conflict check re-runs inside the writing
// transaction: first committer wins, the loser gets ConflictError.
func (s *ReservationService) Create(req CreateReservationRequest, actor uint) (*entity.Reservation, error) {
	if req.PartySize < 1 {
		return nil, apperr.Validation("partySize", "must be at least 1")
	}
	if req.DurationMinutes < 1 {
		return nil, apperr.Validation("durationMinutes", "must be at least 1")
	}

	var res *entity.Reservation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		table, err := s.Tables.Get(tx, req.TableID)
		if err != nil {
			return apperr.NotFound("table")
		}
		if !table.IsActive {
			return apperr.Precondition("table is not active")
		}
		if req.PartySize < table.MinCapacity || req.PartySize > table.Capacity {
			return apperr.Validation("partySize", "outside table capacity range [%d, %d]",
				table.MinCapacity, table.Capacity)
		}

		conflicting, err := s.FindConflictTx(tx, req.TableID, req.StartTime, req.DurationMinutes, 0)
		if err != nil {
			return err
		}
		if conflicting != nil {
			return apperr.Conflict("table already reserved from %s for %d minutes",
				conflicting.StartTime.Format(time.RFC3339), conflicting.DurationMinutes)
		}

		res = &entity.Reservation{
			TableID:         req.TableID,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			PartySize:       req.PartySize,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			DepositAmount:   req.DepositAmount,
			Status:          entity.ReservationPending,
			CreatedBy:       actor,
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
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Confirm moves pending → confirmed.
func (s *ReservationService) Confirm(id uint, actor uint) (*entity.Reservation, error) {
	return s.transition(id, entity.ReservationPending, entity.ReservationConfirmed, actor)
}

// Cancel is allowed from any non-terminal state.
func (s *ReservationService) Cancel(id uint, actor uint) (*entity.Reservation, error) {
	var res *entity.Reservation
	var old entity.ReservationStatus
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := s.Reservations.Get(tx, id)
		if err != nil {
			return apperr.NotFound("reservation")
		}
		if r.Status.Terminal() {
			return apperr.Precondition("reservation is already %s", r.Status)
		}
		affected, err := s.Reservations.UpdateStatusGuard(tx, id, r.Status, entity.ReservationCancelled)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("reservation changed concurrently")
		}

		// A reserved table with no other claim goes back to available.
		if err := s.releaseTableIfIdleTx(tx, r.TableID, actor); err != nil {
			return err
		}

		old = r.Status
		r.Status = entity.ReservationCancelled
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	emit(s.Pub, Event{
		Type:          EventReservationStatusChanged,
		ReservationID: id,
		TableID:       res.TableID,
		OldStatus:     string(old),
		NewStatus:     string(entity.ReservationCancelled),
		Actor:         actor,
	})
	return res, nil
}

// MarkNoShow moves pending/confirmed → no_show and frees the table claim.
func (s *ReservationService) MarkNoShow(id uint, actor uint) (*entity.Reservation, error) {
	var res *entity.Reservation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := s.Reservations.Get(tx, id)
		if err != nil {
			return apperr.NotFound("reservation")
		}
		if r.Status != entity.ReservationPending && r.Status != entity.ReservationConfirmed {
			return apperr.Precondition("no-show requires a pending or confirmed reservation")
		}
		affected, err := s.Reservations.UpdateStatusGuard(tx, id, r.Status, entity.ReservationNoShow)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("reservation changed concurrently")
		}
		if err := s.releaseTableIfIdleTx(tx, r.TableID, actor); err != nil {
			return err
		}
		r.Status = entity.ReservationNoShow
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Seat marks the party arrived: reservation → seated, table → occupied, and
// an order opens for the table in the same transaction.
func (s *ReservationService) Seat(id uint, actor uint) (*entity.Reservation, *entity.Order, error) {
	var res *entity.Reservation
	var order *entity.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := s.Reservations.Get(tx, id)
		if err != nil {
			return apperr.NotFound("reservation")
		}
		if r.Status != entity.ReservationPending && r.Status != entity.ReservationConfirmed {
			return apperr.Precondition("seating requires a pending or confirmed reservation")
		}
		affected, err := s.Reservations.UpdateStatusGuard(tx, id, r.Status, entity.ReservationSeated)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("reservation changed concurrently")
		}

		order, err = s.Lifecycle.GetOrCreateActiveOrderTx(tx, r.TableID, actor)
		if err != nil {
			return err
		}

		r.Status = entity.ReservationSeated
		res = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return res, order, nil
}

// Complete closes a seated reservation.
func (s *ReservationService) Complete(id uint, actor uint) (*entity.Reservation, error) {
	return s.transition(id, entity.ReservationSeated, entity.ReservationCompleted, actor)
}

func (s *ReservationService) transition(id uint, from, to entity.ReservationStatus, actor uint) (*entity.Reservation, error) {
	var res *entity.Reservation
	var changed bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := s.Reservations.Get(tx, id)
		if err != nil {
			return apperr.NotFound("reservation")
		}
		if r.Status == to {
			res = r
			return nil // re-entrant transition is a no-op
		}
		if r.Status != from {
			return apperr.Precondition("reservation is %s, expected %s", r.Status, from)
		}
		affected, err := s.Reservations.UpdateStatusGuard(tx, id, from, to)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("reservation changed concurrently")
		}
		r.Status = to
		res = r
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		emit(s.Pub, Event{
			Type:          EventReservationStatusChanged,
			ReservationID: id,
			TableID:       res.TableID,
			OldStatus:     string(from),
			NewStatus:     string(to),
			Actor:         actor,
		})
	}
	return res, nil
}

// releaseTableIfIdleTx puts a reserved table back to available when neither
// an active order nor another active reservation holds it.
func (s *ReservationService) releaseTableIfIdleTx(tx *gorm.DB, tableID, actor uint) error {
	t, err := s.Tables.Get(tx, tableID)
	if err != nil {
		return err
	}
	if t.Status != entity.TableReserved {
		return nil
	}
	remaining, err := s.Reservations.ListActiveForTable(tx, tableID)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return nil
	}
	activeOrders, err := s.Orders.CountActiveForTable(tx, tableID, 0)
	if err != nil {
		return err
	}
	if activeOrders > 0 {
		return nil
	}
	return s.Tables.SetStatus(tx, tableID, entity.TableAvailable)
}

func (s *ReservationService) Get(id uint) (*entity.Reservation, error) {
	r, err := s.Reservations.Get(s.DB, id)
	if err != nil {
		return nil, apperr.NotFound("reservation")
	}
	return r, nil
}

func (s *ReservationService) ListForTable(tableID uint, limit int) ([]entity.Reservation, error) {
	return s.Reservations.ListForTable(tableID, limit)
}
