package reservation

import (
	"context"
	"time"

	"tailtown/internal/domain"
	"tailtown/internal/repository"
)

// ReservationStore is the persistence collaborator. The core never
// caches reservation rows between calls; every read goes back to the
// store, and every check-then-write runs inside WithTx.
type ReservationStore interface {
	WithTx(ctx context.Context, fn func(tx repository.ReservationTx) error) error
	FindConflicts(ctx context.Context, tenantID, resourceID int64, start, end time.Time, excludeID int64) ([]domain.Reservation, error)
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Reservation, error)
	GetByExternalID(ctx context.Context, tenantID int64, externalID string) (*domain.Reservation, error)
	ListByResourceAndRange(ctx context.Context, tenantID, resourceID int64, from, to time.Time) ([]domain.Reservation, error)
}

type ResourceStore interface {
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Resource, error)
}

type RecurrenceStore interface {
	GetByReservationID(ctx context.Context, tenantID, reservationID int64) (*domain.RecurrencePattern, error)
	Create(ctx context.Context, p *domain.RecurrencePattern) error
	DeleteByReservationID(ctx context.Context, tenantID, reservationID int64) error
}

// EventSink receives lifecycle events for live consumers (front-desk
// board). Optional; a nil sink disables it.
type EventSink interface {
	ReservationCreated(tenantID int64, r *domain.Reservation)
	ReservationUpdated(tenantID int64, r *domain.Reservation)
	StatusChanged(tenantID int64, r *domain.Reservation, from domain.ReservationStatus)
}
