package entity

import (
	"gorm.io/gorm"
)

// User is a staff account. Role is "admin" or "staff".
type User struct {
	gorm.Model
	Email     string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"`
	FirstName string `gorm:"size:50" json:"firstName"`
	LastName  string `gorm:"size:50" json:"lastName"`
	Role      string `gorm:"size:20;default:'staff'" json:"role"`
}
