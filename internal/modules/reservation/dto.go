package reservation

import (
	"time"

	"tailtown/internal/domain"
)

type CreateReservationRequest struct {
	CustomerID int64                    `json:"customer_id" binding:"required"`
	PetID      int64                    `json:"pet_id" binding:"required"`
	ResourceID *int64                   `json:"resource_id"`
	ServiceID  int64                    `json:"service_id"`
	StartDate  time.Time                `json:"start_date" binding:"required"`
	EndDate    time.Time                `json:"end_date" binding:"required"`
	Status     domain.ReservationStatus `json:"status"`
	Notes      string                   `json:"notes"`
	ExternalID string                   `json:"external_id"`
}

// UpdateReservationRequest is a patch: nil fields stay untouched.
// ClearResource releases the suite without assigning a new one.
type UpdateReservationRequest struct {
	ResourceID    *int64                    `json:"resource_id"`
	ClearResource bool                      `json:"clear_resource"`
	StartDate     *time.Time                `json:"start_date"`
	EndDate       *time.Time                `json:"end_date"`
	Status        *domain.ReservationStatus `json:"status"`
	Notes         *string                   `json:"notes"`
}

type TransitionRequest struct {
	Status domain.ReservationStatus `json:"status" binding:"required"`
}

type GenerateRequest struct {
	Frequency domain.RecurrenceFrequency `json:"frequency" binding:"required"`
	Interval  int                        `json:"interval"`
	Count     *int                       `json:"count"`
	Until     *time.Time                 `json:"until"`
	Horizon   *time.Time                 `json:"horizon"`
}

// ConflictInfo is the wire shape of one conflicting reservation in a
// 409 body.
type ConflictInfo struct {
	ReservationID int64                    `json:"reservation_id"`
	ResourceID    *int64                   `json:"resource_id,omitempty"`
	StartDate     time.Time                `json:"start_date"`
	EndDate       time.Time                `json:"end_date"`
	Status        domain.ReservationStatus `json:"status"`
}

func toConflictInfos(conflicts []domain.Reservation) []ConflictInfo {
	out := make([]ConflictInfo, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, ConflictInfo{
			ReservationID: c.ID,
			ResourceID:    c.ResourceID,
			StartDate:     c.StartDate,
			EndDate:       c.EndDate,
			Status:        c.Status,
		})
	}
	return out
}

const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// InstanceResult reports one generated instance of a recurrence
// expansion. A conflict on one instance never aborts the batch.
type InstanceResult struct {
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	Outcome       string         `json:"outcome"`
	ReservationID int64          `json:"reservation_id,omitempty"`
	Conflicts     []ConflictInfo `json:"conflicts,omitempty"`
	Error         string         `json:"error,omitempty"`
}
