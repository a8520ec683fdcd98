package services

import (
	"log"
	"time"
)

type EventType string

const (
	EventOrderStatusChanged       EventType = "order_status_changed"
	EventOrderPriorityChanged     EventType = "order_priority_changed"
	EventTableStatusChanged       EventType = "table_status_changed"
	EventReservationStatusChanged EventType = "reservation_status_changed"
)

// Event is the payload handed to the notification output port. Delivery and
// read-state live outside the core.
type Event struct {
	Type          EventType `json:"type"`
	OrderID       uint      `json:"orderId,omitempty"`
	TableID       uint      `json:"tableId,omitempty"`
	ReservationID uint      `json:"reservationId,omitempty"`
	OldStatus     string    `json:"oldStatus,omitempty"`
	NewStatus     string    `json:"newStatus,omitempty"`
	Priority      string    `json:"priority,omitempty"`
	Actor         uint      `json:"actor,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher is the notification output port.
type Publisher interface {
	Publish(e Event) error
}

// NopPublisher is used when no delivery backend is configured, and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }

// MultiPublisher fans an event out to several backends.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(e Event) error {
	for _, p := range m {
		if err := p.Publish(e); err != nil {
			log.Println("notification publish failed:", err)
		}
	}
	return nil
}

// emit delivers best-effort: a failing publisher never fails the transition.
func emit(p Publisher, e Event) {
	if p == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if err := p.Publish(e); err != nil {
		log.Println("notification publish failed:", err)
	}
}
