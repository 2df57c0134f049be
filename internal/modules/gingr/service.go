package gingr

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"tailtown/internal/domain"
	"tailtown/internal/metrics"
	"tailtown/internal/modules/reservation"
	"tailtown/internal/repository"
)

// ReservationFinder resolves previously synced reservations by their
// Gingr id, for de-duplication.
type ReservationFinder interface {
	GetByExternalID(ctx context.Context, tenantID int64, externalID string) (*domain.Reservation, error)
}

// ResourceFinder maps normalized lodging names onto registry resources.
type ResourceFinder interface {
	GetByName(ctx context.Context, tenantID int64, name string) (*domain.Resource, error)
}

type Service struct {
	reservations *reservation.Service
	finder       ReservationFinder
	resources    ResourceFinder
	log          *zerolog.Logger
}

func NewService(reservations *reservation.Service, finder ReservationFinder, resources ResourceFinder, log *zerolog.Logger) *Service {
	return &Service{
		reservations: reservations,
		finder:       finder,
		resources:    resources,
		log:          log,
	}
}

// mapStatus translates Gingr status strings onto the lifecycle. Unknown
// values land in pending rather than failing the record; the admin
// reviews those by hand anyway.
func mapStatus(raw string) domain.ReservationStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed":
		return domain.ReservationConfirmed
	case "checked in", "checked_in":
		return domain.ReservationCheckedIn
	case "checked out", "checked_out", "completed":
		return domain.ReservationCompleted
	case "cancelled", "canceled":
		return domain.ReservationCancelled
	case "no show", "no_show":
		return domain.ReservationNoShow
	default:
		return domain.ReservationPending
	}
}

// Ingest processes a batch of candidate reservation records from Gingr.
// Records are de-duplicated on external id: a known id patches the
// existing reservation, a new one books through the same overlap-checked
// path as any other booking. Per-record outcomes let the sync job
// report partial success.
func (s *Service) Ingest(ctx context.Context, tenantID int64, records []Record) []RecordResult {
	results := make([]RecordResult, 0, len(records))

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			break
		}
		result := s.ingestOne(ctx, tenantID, rec)
		metrics.IncSyncRecord(result.Outcome)
		results = append(results, result)
	}
	return results
}

func (s *Service) ingestOne(ctx context.Context, tenantID int64, rec Record) RecordResult {
	result := RecordResult{ExternalID: rec.ExternalID}

	if rec.ExternalID == "" {
		result.Outcome = OutcomeError
		result.Error = "missing external id"
		return result
	}
	if !rec.EndDate.After(rec.StartDate) {
		result.Outcome = OutcomeError
		result.Error = "end date must be after start date"
		return result
	}

	var resourceID *int64
	if cand, ok := Normalize(rec.LodgingLabel); ok {
		res, err := s.resources.GetByName(ctx, tenantID, cand.Name)
		switch {
		case err == nil && res.Active:
			resourceID = &res.ID
			result.ResourceName = res.Name
		case err == nil:
			s.log.Warn().Str("resource", cand.Name).Msg("gingr label mapped to inactive resource, leaving unassigned")
		case errors.Is(err, repository.ErrNotFound):
			s.log.Warn().Str("label", rec.LodgingLabel).Str("resource", cand.Name).Msg("gingr label has no matching resource, leaving unassigned")
		default:
			result.Outcome = OutcomeError
			result.Error = err.Error()
			return result
		}
	}

	existing, err := s.finder.GetByExternalID(ctx, tenantID, rec.ExternalID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		result.Outcome = OutcomeError
		result.Error = err.Error()
		return result
	}

	if existing != nil {
		return s.patchExisting(ctx, tenantID, existing, rec, resourceID, result)
	}

	target := mapStatus(rec.Status)

	// Terminal records are history: they never claim a suite, so they
	// import directly instead of running the overlap-checked path.
	if !target.IsActive() {
		imported, err := s.reservations.Import(ctx, tenantID, reservation.CreateReservationRequest{
			CustomerID: rec.CustomerID,
			PetID:      rec.PetID,
			ResourceID: resourceID,
			StartDate:  rec.StartDate,
			EndDate:    rec.EndDate,
			Status:     target,
			Notes:      rec.Notes,
			ExternalID: rec.ExternalID,
		})
		if err != nil {
			return s.classify(err, result)
		}
		result.Outcome = OutcomeCreated
		result.ReservationID = imported.ID
		return result
	}

	status := target
	if status == domain.ReservationCheckedIn {
		status = domain.ReservationConfirmed
	}

	created, err := s.reservations.Create(ctx, tenantID, reservation.CreateReservationRequest{
		CustomerID: rec.CustomerID,
		PetID:      rec.PetID,
		ResourceID: resourceID,
		StartDate:  rec.StartDate,
		EndDate:    rec.EndDate,
		Status:     status,
		Notes:      rec.Notes,
		ExternalID: rec.ExternalID,
	})
	if err != nil {
		return s.classify(err, result)
	}

	result.Outcome = OutcomeCreated
	result.ReservationID = created.ID

	// Walk the lifecycle to the imported state where it differs.
	if target != created.Status {
		if err := s.walkTo(ctx, tenantID, created.ID, created.Status, target); err != nil {
			s.log.Warn().Err(err).Str("external_id", rec.ExternalID).Str("target", string(target)).Msg("gingr status import fell back to created status")
		}
	}
	return result
}

// walkTo moves a reservation to the imported status, inserting the
// check-in step when a history record jumps straight to completed.
func (s *Service) walkTo(ctx context.Context, tenantID, id int64, from, target domain.ReservationStatus) error {
	if target == domain.ReservationCompleted && from == domain.ReservationConfirmed {
		if _, err := s.reservations.TransitionStatus(ctx, tenantID, id, domain.ReservationCheckedIn); err != nil {
			return err
		}
	}
	_, err := s.reservations.TransitionStatus(ctx, tenantID, id, target)
	return err
}

func (s *Service) patchExisting(ctx context.Context, tenantID int64, existing *domain.Reservation, rec Record, resourceID *int64, result RecordResult) RecordResult {
	patch := reservation.UpdateReservationRequest{}
	changed := false

	if !existing.StartDate.Equal(rec.StartDate) {
		start := rec.StartDate
		patch.StartDate = &start
		changed = true
	}
	if !existing.EndDate.Equal(rec.EndDate) {
		end := rec.EndDate
		patch.EndDate = &end
		changed = true
	}
	if resourceID != nil && (existing.ResourceID == nil || *existing.ResourceID != *resourceID) {
		patch.ResourceID = resourceID
		changed = true
	}

	if changed {
		updated, err := s.reservations.Update(ctx, tenantID, existing.ID, patch)
		if err != nil {
			return s.classify(err, result)
		}
		existing = updated
	}

	if target := mapStatus(rec.Status); target != existing.Status {
		if err := s.walkTo(ctx, tenantID, existing.ID, existing.Status, target); err != nil &&
			!errors.Is(err, reservation.ErrInvalidTransition) {
			return s.classify(err, result)
		}
	}

	result.Outcome = OutcomeUpdated
	result.ReservationID = existing.ID
	return result
}

func (s *Service) classify(err error, result RecordResult) RecordResult {
	var conflict *reservation.ConflictError
	if errors.As(err, &conflict) {
		result.Outcome = OutcomeConflict
		result.Error = err.Error()
		return result
	}
	result.Outcome = OutcomeError
	result.Error = err.Error()
	return result
}
