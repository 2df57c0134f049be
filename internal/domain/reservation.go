package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCheckedIn ReservationStatus = "checked_in"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

// ActiveStatuses are the statuses that claim a resource and therefore
// count toward overlap conflicts.
var ActiveStatuses = []ReservationStatus{
	ReservationPending,
	ReservationConfirmed,
	ReservationCheckedIn,
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCheckedIn,
		ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

func (s ReservationStatus) IsActive() bool {
	return s == ReservationPending || s == ReservationConfirmed || s == ReservationCheckedIn
}

// IsTerminal reports whether no further transition is permitted.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled || s == ReservationNoShow
}

// CanTransition reports whether from -> to is a legal walk of the lifecycle:
//
//	pending    -> confirmed, cancelled
//	confirmed  -> checked_in, cancelled, no_show
//	checked_in -> completed, cancelled
//
// Any non-terminal status may always be cancelled. Terminal statuses are frozen.
func CanTransition(from, to ReservationStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == ReservationCancelled {
		return true
	}
	switch from {
	case ReservationPending:
		return to == ReservationConfirmed
	case ReservationConfirmed:
		return to == ReservationCheckedIn || to == ReservationNoShow
	case ReservationCheckedIn:
		return to == ReservationCompleted
	}
	return false
}

// Reservation is a claim on a resource for a pet over the half-open
// interval [StartDate, EndDate). ResourceID stays nil until a suite is
// assigned; unassigned reservations never conflict.
type Reservation struct {
	ID          int64             `json:"id"`
	TenantID    int64             `json:"tenant_id"`
	CustomerID  int64             `json:"customer_id" validate:"required"`
	PetID       int64             `json:"pet_id" validate:"required"`
	ResourceID  *int64            `json:"resource_id,omitempty"`
	ServiceID   int64             `json:"service_id,omitempty"`
	Status      ReservationStatus `json:"status"`
	StartDate   time.Time         `json:"start_date" validate:"required"`
	EndDate     time.Time         `json:"end_date" validate:"required"`
	OrderNumber string            `json:"order_number,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	ExternalID  string            `json:"external_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`

	Resource *Resource `json:"resource,omitempty"`
}

// Overlaps applies the half-open interval predicate: touching endpoints
// do not overlap, so same-day turnover on one suite is legal.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartDate.Before(end) && r.EndDate.After(start)
}
