package repository

import (
	"tableside/entity"

	"gorm.io/gorm"
)

type TableRepository struct {
	DB *gorm.DB
}

func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{DB: db}
}

func (r *TableRepository) Get(tx *gorm.DB, id uint) (*entity.Table, error) {
	var t entity.Table
	if err := tx.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TableRepository) List() ([]entity.Table, error) {
	var tables []entity.Table
	err := r.DB.Order("capacity ASC, id ASC").Find(&tables).Error
	return tables, err
}

// ListActiveForParty returns active tables whose capacity range admits the
// party, smallest first so availability search wastes the least capacity.
func (r *TableRepository) ListActiveForParty(partySize int) ([]entity.Table, error) {
	var tables []entity.Table
	err := r.DB.
		Where("is_active = ? AND min_capacity <= ? AND capacity >= ?", true, partySize, partySize).
		Order("capacity ASC, id ASC").
		Find(&tables).Error
	return tables, err
}

func (r *TableRepository) Create(t *entity.Table) error {
	return r.DB.Create(t).Error
}

func (r *TableRepository) Save(t *entity.Table) error {
	return r.DB.Save(t).Error
}

// UpdateStatusGuard flips status only when the current value matches.
// Zero rows affected means a competing writer got there first.
func (r *TableRepository) UpdateStatusGuard(tx *gorm.DB, tableID uint, from, to entity.TableStatus) (int64, error) {
	res := tx.Model(&entity.Table{}).
		Where("id = ? AND status = ?", tableID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *TableRepository) SetStatus(tx *gorm.DB, tableID uint, to entity.TableStatus) error {
	return tx.Model(&entity.Table{}).Where("id = ?", tableID).Update("status", to).Error
}
