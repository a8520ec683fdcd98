package entity

import (
	"gorm.io/gorm"
)

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableReserved    TableStatus = "reserved"
	TableOccupied    TableStatus = "occupied"
	TableMaintenance TableStatus = "maintenance"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableReserved, TableOccupied, TableMaintenance:
		return true
	}
	return false
}

type Table struct {
	gorm.Model
	Number      string      `gorm:"size:20;uniqueIndex;not null" json:"number"`
	MinCapacity int         `json:"minCapacity"`
	Capacity    int         `json:"capacity"`
	Status      TableStatus `gorm:"size:20;default:'available'" json:"status"`
	IsActive    bool        `gorm:"default:true" json:"isActive"`

	Reservations []Reservation `json:"-"` // preload only where needed
	Orders       []Order       `json:"-"`
}
