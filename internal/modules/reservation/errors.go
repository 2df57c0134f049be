package reservation

import (
	"errors"
	"fmt"

	"tailtown/internal/domain"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("reservation not found")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrResourceInactive  = errors.New("resource is inactive")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// ConflictError is the normal "suite already occupied" result, not a
// failure: it carries the existing reservations so the caller can show
// who holds the resource and when.
type ConflictError struct {
	Conflicts []domain.Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with %d existing reservation(s)", len(e.Conflicts))
}
