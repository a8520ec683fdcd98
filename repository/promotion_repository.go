package repository

import (
	"errors"
	"strings"

	"tableside/entity"

	"gorm.io/gorm"
)

type PromotionRepository struct {
	DB *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{DB: db}
}

func (r *PromotionRepository) Create(p *entity.Promotion) error {
	return r.DB.Create(p).Error
}

func (r *PromotionRepository) Get(id uint) (*entity.Promotion, error) {
	var p entity.Promotion
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByCode is case-insensitive on the code; returns nil when unknown.
func (r *PromotionRepository) GetByCode(tx *gorm.DB, code string) (*entity.Promotion, error) {
	var p entity.Promotion
	err := tx.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromotionRepository) List() ([]entity.Promotion, error) {
	var out []entity.Promotion
	err := r.DB.Order("id DESC").Find(&out).Error
	return out, err
}

func (r *PromotionRepository) Save(p *entity.Promotion) error {
	return r.DB.Save(p).Error
}

func (r *PromotionRepository) Delete(id uint) error {
	return r.DB.Delete(&entity.Promotion{}, id).Error
}
