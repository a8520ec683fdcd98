package repository

import (
	"tableside/entity"

	"gorm.io/gorm"
)

type TaxSettingRepository struct {
	DB *gorm.DB
}

func NewTaxSettingRepository(db *gorm.DB) *TaxSettingRepository {
	return &TaxSettingRepository{DB: db}
}

func (r *TaxSettingRepository) Create(ts *entity.TaxSetting) error {
	return r.DB.Create(ts).Error
}

func (r *TaxSettingRepository) Get(id uint) (*entity.TaxSetting, error) {
	var ts entity.TaxSetting
	if err := r.DB.First(&ts, id).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *TaxSettingRepository) List() ([]entity.TaxSetting, error) {
	var out []entity.TaxSetting
	err := r.DB.Order("id DESC").Find(&out).Error
	return out, err
}

// Activate makes one policy active and retires the rest in one transaction,
// keeping the single-active invariant.
func (r *TaxSettingRepository) Activate(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var ts entity.TaxSetting
		if err := tx.First(&ts, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.TaxSetting{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&entity.TaxSetting{}).
			Where("id = ?", id).
			Update("is_active", true).Error
	})
}
