package reservation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tailtown/internal/domain"
	"tailtown/internal/metrics"
	"tailtown/internal/repository"
)

// Options tune the service; zero values fall back to defaults.
type Options struct {
	// TxRetries bounds retries of serialization-failure aborts.
	TxRetries int
	// MaxInstances caps a single recurrence expansion.
	MaxInstances int
	// HorizonDays bounds open-ended patterns when the caller gives no
	// horizon.
	HorizonDays int
}

func (o *Options) applyDefaults() {
	if o.TxRetries <= 0 {
		o.TxRetries = 3
	}
	if o.MaxInstances <= 0 {
		o.MaxInstances = 100
	}
	if o.HorizonDays <= 0 {
		o.HorizonDays = 180
	}
}

type Service struct {
	store      ReservationStore
	resources  ResourceStore
	recurrence RecurrenceStore
	events     EventSink
	log        *zerolog.Logger
	opts       Options
}

func NewService(
	store ReservationStore,
	resources ResourceStore,
	recurrence RecurrenceStore,
	events EventSink,
	log *zerolog.Logger,
	opts Options,
) *Service {
	opts.applyDefaults()
	return &Service{
		store:      store,
		resources:  resources,
		recurrence: recurrence,
		events:     events,
		log:        log,
		opts:       opts,
	}
}

// Create books a reservation. The conflict check and the insert run as
// one transactional unit; two racing requests for the same suite and
// overlapping dates end with exactly one success and one ConflictError.
func (s *Service) Create(ctx context.Context, tenantID int64, req CreateReservationRequest) (*domain.Reservation, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, ErrValidation
	}

	status := req.Status
	if status == "" {
		status = domain.ReservationPending
	}
	if status != domain.ReservationPending && status != domain.ReservationConfirmed {
		return nil, ErrValidation
	}

	if req.ResourceID != nil {
		res, err := s.resources.GetByID(ctx, tenantID, *req.ResourceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrResourceNotFound
			}
			return nil, err
		}
		if !res.Active {
			return nil, ErrResourceInactive
		}
	}

	r := &domain.Reservation{
		TenantID:    tenantID,
		CustomerID:  req.CustomerID,
		PetID:       req.PetID,
		ResourceID:  req.ResourceID,
		ServiceID:   req.ServiceID,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		OrderNumber: uuid.NewString(),
		Notes:       req.Notes,
		ExternalID:  req.ExternalID,
	}

	if err := s.commitWithRetry(ctx, r, func(tx repository.ReservationTx) error {
		return tx.Create(ctx, r)
	}); err != nil {
		return nil, err
	}

	metrics.IncCreated(string(r.Status))
	if s.events != nil {
		s.events.ReservationCreated(tenantID, r)
	}
	return r, nil
}

// Import books a record coming from an upstream system, which may
// already be in any lifecycle state. Terminal records are history;
// they never claim the suite, so they skip the overlap check and the
// liveness gate that guard live bookings. The resource may well be
// disabled by the time old stays are imported.
func (s *Service) Import(ctx context.Context, tenantID int64, req CreateReservationRequest) (*domain.Reservation, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, ErrValidation
	}

	status := req.Status
	if status == "" {
		status = domain.ReservationPending
	}
	if !status.Valid() {
		return nil, ErrValidation
	}

	if req.ResourceID != nil {
		if _, err := s.resources.GetByID(ctx, tenantID, *req.ResourceID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrResourceNotFound
			}
			return nil, err
		}
	}

	r := &domain.Reservation{
		TenantID:    tenantID,
		CustomerID:  req.CustomerID,
		PetID:       req.PetID,
		ResourceID:  req.ResourceID,
		ServiceID:   req.ServiceID,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		OrderNumber: uuid.NewString(),
		Notes:       req.Notes,
		ExternalID:  req.ExternalID,
	}
	if status == domain.ReservationCancelled {
		now := time.Now().UTC()
		r.CancelledAt = &now
	}

	if err := s.commitWithRetry(ctx, r, func(tx repository.ReservationTx) error {
		return tx.Create(ctx, r)
	}); err != nil {
		return nil, err
	}

	metrics.IncCreated(string(r.Status))
	if s.events != nil {
		s.events.ReservationCreated(tenantID, r)
	}
	return r, nil
}

// Update applies a patch. Any change to the resource or the interval
// re-runs the overlap check against the new claim, excluding the
// reservation itself; a pure status change goes through the transition
// table instead.
func (s *Service) Update(ctx context.Context, tenantID, id int64, patch UpdateReservationRequest) (*domain.Reservation, error) {
	current, err := s.store.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updated := *current

	if patch.Status != nil && *patch.Status != current.Status {
		if !patch.Status.Valid() {
			return nil, ErrValidation
		}
		if !domain.CanTransition(current.Status, *patch.Status) {
			return nil, ErrInvalidTransition
		}
		updated.Status = *patch.Status
		if updated.Status == domain.ReservationCancelled {
			now := time.Now().UTC()
			updated.CancelledAt = &now
		}
	}

	claimChanged := false
	resourceChanged := false
	switch {
	case patch.ClearResource:
		if updated.ResourceID != nil {
			updated.ResourceID = nil
			claimChanged = true
			resourceChanged = true
		}
	case patch.ResourceID != nil:
		if current.ResourceID == nil || *patch.ResourceID != *current.ResourceID {
			updated.ResourceID = patch.ResourceID
			claimChanged = true
			resourceChanged = true
		}
	}
	if patch.StartDate != nil && !patch.StartDate.Equal(current.StartDate) {
		updated.StartDate = *patch.StartDate
		claimChanged = true
	}
	if patch.EndDate != nil && !patch.EndDate.Equal(current.EndDate) {
		updated.EndDate = *patch.EndDate
		claimChanged = true
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}

	if claimChanged && current.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}
	if !updated.EndDate.After(updated.StartDate) {
		return nil, ErrValidation
	}

	// Liveness is only re-checked when the suite itself changes. A
	// disabled suite blocks new claims, not date edits on the stay it
	// already hosts.
	if resourceChanged && updated.ResourceID != nil {
		res, err := s.resources.GetByID(ctx, tenantID, *updated.ResourceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrResourceNotFound
			}
			return nil, err
		}
		if !res.Active {
			return nil, ErrResourceInactive
		}
	}

	// A status-only change cannot invalidate an already-booked interval:
	// the transition table never re-enters an active status from a
	// non-active one, so the overlap re-check is skipped.
	needCheck := claimChanged && updated.ResourceID != nil && updated.Status.IsActive()

	commit := func(tx repository.ReservationTx) error {
		return tx.Update(ctx, &updated)
	}
	if needCheck {
		err = s.commitWithRetry(ctx, &updated, commit)
	} else {
		err = s.store.WithTx(ctx, commit)
	}
	if err != nil {
		return nil, err
	}

	if updated.Status != current.Status {
		metrics.IncTransition(string(updated.Status))
	}
	if s.events != nil {
		s.events.ReservationUpdated(tenantID, &updated)
	}
	return &updated, nil
}

// TransitionStatus moves a reservation along the lifecycle graph.
// Terminal statuses are frozen; an illegal move fails with
// ErrInvalidTransition and changes nothing.
func (s *Service) TransitionStatus(ctx context.Context, tenantID, id int64, newStatus domain.ReservationStatus) (*domain.Reservation, error) {
	if !newStatus.Valid() {
		return nil, ErrValidation
	}

	r, err := s.store.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.Status == newStatus {
		return r, nil
	}
	if !domain.CanTransition(r.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	from := r.Status
	var cancelledAt *time.Time
	if newStatus == domain.ReservationCancelled {
		now := time.Now().UTC()
		cancelledAt = &now
	}

	err = s.store.WithTx(ctx, func(tx repository.ReservationTx) error {
		return tx.UpdateStatus(ctx, tenantID, id, newStatus, cancelledAt)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r.Status = newStatus
	r.CancelledAt = cancelledAt
	metrics.IncTransition(string(newStatus))
	if s.events != nil {
		s.events.StatusChanged(tenantID, r, from)
	}
	return r, nil
}

// FindConflicts is the read-side conflict report: active reservations
// on the resource intersecting [start, end). Adjacent intervals are not
// conflicts.
func (s *Service) FindConflicts(ctx context.Context, tenantID, resourceID int64, start, end time.Time, excludeID int64) ([]domain.Reservation, error) {
	if !end.After(start) {
		return nil, ErrValidation
	}
	return s.store.FindConflicts(ctx, tenantID, resourceID, start, end, excludeID)
}

// Schedule lists every reservation on the resource intersecting
// [from, to), for calendar views.
func (s *Service) Schedule(ctx context.Context, tenantID, resourceID int64, from, to time.Time) ([]domain.Reservation, error) {
	if !to.After(from) {
		return nil, ErrValidation
	}
	return s.store.ListByResourceAndRange(ctx, tenantID, resourceID, from, to)
}

func (s *Service) GetByID(ctx context.Context, tenantID, id int64) (*domain.Reservation, error) {
	r, err := s.store.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// commitWithRetry runs the conflict check plus commit inside one
// transaction, retrying serialization aborts with jittered backoff. A
// storage-level overlap violation means a racing writer won after our
// check passed; it is reported as an ordinary conflict, never a 500.
func (s *Service) commitWithRetry(ctx context.Context, r *domain.Reservation, commit func(tx repository.ReservationTx) error) error {
	var lastErr error
	for attempt := 0; attempt < s.opts.TxRetries; attempt++ {
		if attempt > 0 {
			metrics.IncTxRetry()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffJitter(attempt)):
			}
		}

		err := s.store.WithTx(ctx, func(tx repository.ReservationTx) error {
			if r.ResourceID != nil && r.Status.IsActive() {
				conflicts, err := tx.FindConflicts(ctx, r.TenantID, *r.ResourceID, r.StartDate, r.EndDate, r.ID)
				if err != nil {
					return err
				}
				if len(conflicts) > 0 {
					return &ConflictError{Conflicts: conflicts}
				}
			}
			return commit(tx)
		})
		if err == nil {
			return nil
		}

		var conflict *ConflictError
		if errors.As(err, &conflict) {
			metrics.IncConflict()
			return conflict
		}
		if repository.IsOverlapViolation(err) {
			metrics.IncConflict()
			return s.conflictFromStore(ctx, r)
		}
		if !repository.IsRetryableTxError(err) {
			return err
		}
		lastErr = err
		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("reservation tx aborted, retrying")
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
}

// conflictFromStore rebuilds the conflict list after the exclusion
// constraint fired, so the loser of a race still sees who won.
func (s *Service) conflictFromStore(ctx context.Context, r *domain.Reservation) error {
	conflicts, err := s.store.FindConflicts(ctx, r.TenantID, *r.ResourceID, r.StartDate, r.EndDate, r.ID)
	if err != nil {
		return &ConflictError{}
	}
	return &ConflictError{Conflicts: conflicts}
}

func backoffJitter(attempt int) time.Duration {
	base := time.Duration(attempt) * 25 * time.Millisecond
	return base + time.Duration(rand.Int63n(int64(25*time.Millisecond)))
}
