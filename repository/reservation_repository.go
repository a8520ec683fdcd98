package repository

import (
	"tableside/entity"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	DB *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

func (r *ReservationRepository) Create(tx *gorm.DB, res *entity.Reservation) error {
	return tx.Create(res).Error
}

func (r *ReservationRepository) Get(tx *gorm.DB, id uint) (*entity.Reservation, error) {
	var res entity.Reservation
	if err := tx.First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// ListActiveForTable returns the reservations still holding a claim on the
// table (cancelled/completed/no_show excluded). Overlap math happens in the
// scheduler; end times are derived, not stored.
func (r *ReservationRepository) ListActiveForTable(tx *gorm.DB, tableID uint) ([]entity.Reservation, error) {
	var out []entity.Reservation
	err := tx.
		Where("table_id = ? AND status NOT IN ?", tableID,
			[]entity.ReservationStatus{entity.ReservationCancelled, entity.ReservationCompleted, entity.ReservationNoShow}).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *ReservationRepository) ListForTable(tableID uint, limit int) ([]entity.Reservation, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []entity.Reservation
	err := r.DB.Where("table_id = ?", tableID).
		Order("start_time DESC").Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateStatusGuard flips status only from the expected current value.
func (r *ReservationRepository) UpdateStatusGuard(tx *gorm.DB, id uint, from, to entity.ReservationStatus) (int64, error) {
	res := tx.Model(&entity.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
