package entity

import (
	"time"

	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

// Terminal reports whether the reservation can no longer change state.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled || s == ReservationNoShow
}

type Reservation struct {
	gorm.Model
	TableID uint  `gorm:"index;not null" json:"tableId"`
	Table   Table `json:"-"`

	CustomerName  string `gorm:"size:100" json:"customerName"`
	CustomerPhone string `gorm:"size:30" json:"customerPhone"`
	PartySize     int    `json:"partySize"`

	StartTime       time.Time         `gorm:"index" json:"startTime"`
	DurationMinutes int               `json:"durationMinutes"`
	Status          ReservationStatus `gorm:"size:20;default:'pending'" json:"status"`
	DepositAmount   int64             `json:"depositAmount"` // minor units

	CreatedBy uint `json:"createdBy"`
}

// EndTime is derived; the conflict window is [StartTime, EndTime).
func (r *Reservation) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)
}
