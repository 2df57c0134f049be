package reservation

import (
	"context"
	"errors"
	"time"

	"tailtown/internal/domain"
	"tailtown/internal/repository"
)

type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GenerateInstances expands a recurrence pattern into concrete
// candidate intervals, starting from the first repetition after the
// template. The sequence is always finite: it stops at the pattern's
// count or until date, at the horizon, and at maxInstances whichever
// comes first, so an open-ended pattern cannot run away.
func GenerateInstances(p domain.RecurrencePattern, template Interval, horizon time.Time, maxInstances int) []Interval {
	step := p.Interval
	if step <= 0 {
		step = 1
	}
	duration := template.End.Sub(template.Start)

	advance := func(t time.Time) time.Time {
		switch p.Frequency {
		case domain.RecurrenceDaily:
			return t.AddDate(0, 0, step)
		case domain.RecurrenceWeekly:
			return t.AddDate(0, 0, 7*step)
		case domain.RecurrenceBiweekly:
			return t.AddDate(0, 0, 14*step)
		case domain.RecurrenceMonthly:
			return t.AddDate(0, step, 0)
		}
		return t
	}

	var out []Interval
	start := advance(template.Start)
	for {
		if maxInstances > 0 && len(out) >= maxInstances {
			break
		}
		if p.Count != nil && len(out) >= *p.Count {
			break
		}
		if p.Until != nil && start.After(*p.Until) {
			break
		}
		if !horizon.IsZero() && !start.Before(horizon) {
			break
		}
		out = append(out, Interval{Start: start, End: start.Add(duration)})
		next := advance(start)
		if !next.After(start) {
			break
		}
		start = next
	}
	return out
}

// GenerateReservations expands the pattern in req against the template
// reservation and books each instance independently through Create. A
// conflict on one instance does not abort the batch; admins would
// rather get 8 of 10 weeks booked with 2 flagged than none. The loop
// honors ctx cancellation between instances, and every already-written
// instance stays committed.
func (s *Service) GenerateReservations(ctx context.Context, tenantID, reservationID int64, req GenerateRequest) ([]InstanceResult, error) {
	if !req.Frequency.Valid() {
		return nil, ErrValidation
	}

	template, err := s.store.GetByID(ctx, tenantID, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	pattern := domain.RecurrencePattern{
		TenantID:      tenantID,
		ReservationID: reservationID,
		Frequency:     req.Frequency,
		Interval:      req.Interval,
		Count:         req.Count,
		Until:         req.Until,
	}

	// The pattern is 1:1 with its template; regenerating replaces it.
	if err := s.recurrence.DeleteByReservationID(ctx, tenantID, reservationID); err != nil {
		return nil, err
	}
	if err := s.recurrence.Create(ctx, &pattern); err != nil {
		return nil, err
	}

	horizon := time.Now().UTC().AddDate(0, 0, s.opts.HorizonDays)
	if req.Horizon != nil {
		horizon = *req.Horizon
	}

	instanceStatus := template.Status
	if !instanceStatus.IsActive() || instanceStatus == domain.ReservationCheckedIn {
		instanceStatus = domain.ReservationPending
	}

	instances := GenerateInstances(pattern, Interval{Start: template.StartDate, End: template.EndDate}, horizon, s.opts.MaxInstances)
	results := make([]InstanceResult, 0, len(instances))

	for _, in := range instances {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := InstanceResult{StartDate: in.Start, EndDate: in.End}

		created, err := s.Create(ctx, tenantID, CreateReservationRequest{
			CustomerID: template.CustomerID,
			PetID:      template.PetID,
			ResourceID: template.ResourceID,
			ServiceID:  template.ServiceID,
			StartDate:  in.Start,
			EndDate:    in.End,
			Status:     instanceStatus,
			Notes:      template.Notes,
		})

		var conflict *ConflictError
		switch {
		case err == nil:
			result.Outcome = OutcomeCreated
			result.ReservationID = created.ID
		case errors.As(err, &conflict):
			result.Outcome = OutcomeConflict
			result.Conflicts = toConflictInfos(conflict.Conflicts)
		default:
			result.Outcome = OutcomeError
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results, nil
}
