package repository

import (
	"tableside/entity"

	"gorm.io/gorm"
)

type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: db}
}

func (r *MenuRepository) Get(tx *gorm.DB, id uint) (*entity.MenuItem, error) {
	var m entity.MenuItem
	if err := tx.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetWithComponents preloads combo components for combo expansion.
func (r *MenuRepository) GetWithComponents(tx *gorm.DB, id uint) (*entity.MenuItem, error) {
	var m entity.MenuItem
	if err := tx.Preload("Components").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MenuRepository) List() ([]entity.MenuItem, error) {
	var out []entity.MenuItem
	err := r.DB.Where("is_active = ?", true).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *MenuRepository) Create(m *entity.MenuItem) error {
	return r.DB.Create(m).Error
}

func (r *MenuRepository) Save(m *entity.MenuItem) error {
	return r.DB.Save(m).Error
}

func (r *MenuRepository) AddComponent(c *entity.ComboComponent) error {
	return r.DB.Create(c).Error
}
