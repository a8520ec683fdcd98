package configs

import (
	"errors"
	"log"

	"tableside/entity"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the first admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
func SeedAdmin() error {
	db := DB()
	email := getEnv("ADMIN_EMAIL", "")
	pass := getEnv("ADMIN_PASSWORD", "")
	if email == "" || pass == "" {
		log.Println("skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD")
		return nil
	}

	var count int64
	db.Model(&entity.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	admin := entity.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Admin",
		LastName:  "Seed",
		Role:      "admin",
	}
	return db.Create(&admin).Error
}

// SeedDefaults inserts the baseline operational rows: one active tax policy
// and a starter floor plan. Idempotent.
func SeedDefaults() error {
	db := DB()

	var taxCount int64
	db.Model(&entity.TaxSetting{}).Count(&taxCount)
	if taxCount == 0 {
		if err := db.Create(&entity.TaxSetting{
			Type:        entity.TaxManual,
			TaxRate:     7,
			ServiceRate: 10,
			IsActive:    true,
		}).Error; err != nil {
			return err
		}
	}

	tables := []entity.Table{
		{Number: "T1", MinCapacity: 1, Capacity: 2, Status: entity.TableAvailable, IsActive: true},
		{Number: "T2", MinCapacity: 1, Capacity: 2, Status: entity.TableAvailable, IsActive: true},
		{Number: "T3", MinCapacity: 2, Capacity: 4, Status: entity.TableAvailable, IsActive: true},
		{Number: "T4", MinCapacity: 2, Capacity: 4, Status: entity.TableAvailable, IsActive: true},
		{Number: "T5", MinCapacity: 4, Capacity: 8, Status: entity.TableAvailable, IsActive: true},
	}
	for _, t := range tables {
		var existing entity.Table
		err := db.Where("number = ?", t.Number).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&t).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	log.Println("default rows seeded")
	return nil
}
