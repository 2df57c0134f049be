package board

import (
	"time"

	"tailtown/internal/domain"
)

const (
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventStatusChanged      = "reservation.status_changed"
)

type Event struct {
	Type        string              `json:"type"`
	At          time.Time           `json:"at"`
	Reservation *domain.Reservation `json:"reservation"`
	FromStatus  string              `json:"from_status,omitempty"`
}

// The hub is the reservation service's event sink.

func (h *Hub) ReservationCreated(tenantID int64, r *domain.Reservation) {
	h.Broadcast(tenantID, Event{
		Type:        EventReservationCreated,
		At:          time.Now().UTC(),
		Reservation: r,
	})
}

func (h *Hub) ReservationUpdated(tenantID int64, r *domain.Reservation) {
	h.Broadcast(tenantID, Event{
		Type:        EventReservationUpdated,
		At:          time.Now().UTC(),
		Reservation: r,
	})
}

func (h *Hub) StatusChanged(tenantID int64, r *domain.Reservation, from domain.ReservationStatus) {
	h.Broadcast(tenantID, Event{
		Type:        EventStatusChanged,
		At:          time.Now().UTC(),
		Reservation: r,
		FromStatus:  string(from),
	})
}
