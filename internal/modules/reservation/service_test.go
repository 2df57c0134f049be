package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tailtown/internal/domain"
	"tailtown/internal/repository"
)

// Mock stores

type MockReservationStore struct {
	mock.Mock
}

func (m *MockReservationStore) WithTx(ctx context.Context, fn func(tx repository.ReservationTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockReservationStore) FindConflicts(ctx context.Context, tenantID, resourceID int64, start, end time.Time, excludeID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, tenantID, resourceID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationStore) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	if r != nil && args.Error(0) == nil {
		r.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockReservationStore) Update(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationStore) UpdateStatus(ctx context.Context, tenantID, id int64, status domain.ReservationStatus, cancelledAt *time.Time) error {
	args := m.Called(ctx, tenantID, id, status, cancelledAt)
	return args.Error(0)
}

func (m *MockReservationStore) GetByID(ctx context.Context, tenantID, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationStore) GetByExternalID(ctx context.Context, tenantID int64, externalID string) (*domain.Reservation, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationStore) ListByResourceAndRange(ctx context.Context, tenantID, resourceID int64, from, to time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, tenantID, resourceID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type MockResourceStore struct {
	mock.Mock
}

func (m *MockResourceStore) GetByID(ctx context.Context, tenantID, id int64) (*domain.Resource, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}

type MockRecurrenceStore struct {
	mock.Mock
}

func (m *MockRecurrenceStore) GetByReservationID(ctx context.Context, tenantID, reservationID int64) (*domain.RecurrencePattern, error) {
	args := m.Called(ctx, tenantID, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurrencePattern), args.Error(1)
}

func (m *MockRecurrenceStore) Create(ctx context.Context, p *domain.RecurrencePattern) error {
	args := m.Called(ctx, p)
	if p != nil && args.Error(0) == nil {
		p.ID = 77
	}
	return args.Error(0)
}

func (m *MockRecurrenceStore) DeleteByReservationID(ctx context.Context, tenantID, reservationID int64) error {
	args := m.Called(ctx, tenantID, reservationID)
	return args.Error(0)
}

func newTestService(store *MockReservationStore, resources *MockResourceStore, recurrence *MockRecurrenceStore) *Service {
	logger := zerolog.Nop()
	return NewService(store, resources, recurrence, nil, &logger, Options{TxRetries: 3})
}

func day(d int) time.Time {
	return time.Date(2025, 10, d, 0, 0, 0, 0, time.UTC)
}

func resourceID(id int64) *int64 { return &id }

func activeResource(id int64) *domain.Resource {
	return &domain.Resource{ID: id, TenantID: 1, Name: "A01", Type: domain.ResourceStandard, Capacity: 1, Active: true}
}

func TestService_Create_Success(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	resources.On("GetByID", mock.Anything, int64(1), int64(10)).Return(activeResource(10), nil)
	store.On("WithTx", mock.Anything).Return(nil)
	store.On("FindConflicts", mock.Anything, int64(1), int64(10), day(1), day(5), int64(0)).Return([]domain.Reservation{}, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(10),
		StartDate:  day(1),
		EndDate:    day(5),
	})

	assert.NoError(t, err)
	assert.NotNil(t, r)
	assert.Equal(t, int64(999), r.ID)
	assert.Equal(t, domain.ReservationPending, r.Status)
	assert.NotEmpty(t, r.OrderNumber)
	store.AssertExpectations(t)
}

func TestService_Create_InvalidInterval(t *testing.T) {
	service := newTestService(new(MockReservationStore), new(MockResourceStore), new(MockRecurrenceStore))

	_, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		StartDate:  day(5),
		EndDate:    day(5),
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Create_InitialStatusMustBePendingOrConfirmed(t *testing.T) {
	service := newTestService(new(MockReservationStore), new(MockResourceStore), new(MockRecurrenceStore))

	_, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		StartDate:  day(1),
		EndDate:    day(5),
		Status:     domain.ReservationCheckedIn,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Create_ConflictReportsExistingReservation(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	existing := domain.Reservation{
		ID:         42,
		TenantID:   1,
		ResourceID: resourceID(10),
		Status:     domain.ReservationConfirmed,
		StartDate:  day(1),
		EndDate:    day(5),
	}

	resources.On("GetByID", mock.Anything, int64(1), int64(10)).Return(activeResource(10), nil)
	store.On("WithTx", mock.Anything).Return(nil)
	store.On("FindConflicts", mock.Anything, int64(1), int64(10), day(3), day(7), int64(0)).Return([]domain.Reservation{existing}, nil)

	_, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(10),
		StartDate:  day(3),
		EndDate:    day(7),
	})

	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, int64(42), conflict.Conflicts[0].ID)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_SameIntervalOnOtherResourceSucceeds(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	resources.On("GetByID", mock.Anything, int64(1), int64(11)).Return(activeResource(11), nil)
	store.On("WithTx", mock.Anything).Return(nil)
	store.On("FindConflicts", mock.Anything, int64(1), int64(11), day(3), day(7), int64(0)).Return([]domain.Reservation{}, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(11),
		StartDate:  day(3),
		EndDate:    day(7),
	})

	assert.NoError(t, err)
	assert.NotNil(t, r)
}

func TestService_Create_ResourceNotFound(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	resources.On("GetByID", mock.Anything, int64(1), int64(10)).Return(nil, repository.ErrNotFound)

	_, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(10),
		StartDate:  day(1),
		EndDate:    day(5),
	})

	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestService_Create_ResourceInactive(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	disabled := activeResource(10)
	disabled.Active = false
	resources.On("GetByID", mock.Anything, int64(1), int64(10)).Return(disabled, nil)

	_, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(10),
		StartDate:  day(1),
		EndDate:    day(5),
	})

	assert.ErrorIs(t, err, ErrResourceInactive)
}

func TestService_Create_RetriesSerializationAbort(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	resources.On("GetByID", mock.Anything, int64(1), int64(10)).Return(activeResource(10), nil)
	store.On("WithTx", mock.Anything).Return(&pgconn.PgError{Code: "40001"}).Once()
	store.On("WithTx", mock.Anything).Return(nil).Once()
	store.On("FindConflicts", mock.Anything, int64(1), int64(10), day(1), day(5), int64(0)).Return([]domain.Reservation{}, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(10),
		StartDate:  day(1),
		EndDate:    day(5),
	})

	assert.NoError(t, err)
	assert.NotNil(t, r)
	store.AssertExpectations(t)
}

func TestService_Create_RetriesExhausted(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	resources.On("GetByID", mock.Anything, int64(1), int64(10)).Return(activeResource(10), nil)
	store.On("WithTx", mock.Anything).Return(&pgconn.PgError{Code: "40001"})

	_, err := service.Create(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(10),
		StartDate:  day(1),
		EndDate:    day(5),
	})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	store.AssertNumberOfCalls(t, "WithTx", 3)
}

func TestService_Update_IntervalChangeRechecksOverlap(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	current := &domain.Reservation{
		ID:         7,
		TenantID:   1,
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(10),
		Status:     domain.ReservationConfirmed,
		StartDate:  day(1),
		EndDate:    day(5),
	}

	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(current, nil)
	store.On("WithTx", mock.Anything).Return(nil)
	store.On("FindConflicts", mock.Anything, int64(1), int64(10), day(1), day(8), int64(7)).Return([]domain.Reservation{}, nil)
	store.On("Update", mock.Anything, mock.Anything).Return(nil)

	end := day(8)
	r, err := service.Update(context.Background(), 1, 7, UpdateReservationRequest{EndDate: &end})

	assert.NoError(t, err)
	assert.Equal(t, day(8), r.EndDate)
	store.AssertExpectations(t)
	// date edits keep the suite; its liveness is not re-checked
	resources.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update_ResourceChangeValidatesTarget(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	current := &domain.Reservation{
		ID:         7,
		TenantID:   1,
		ResourceID: resourceID(10),
		Status:     domain.ReservationConfirmed,
		StartDate:  day(1),
		EndDate:    day(5),
	}
	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(current, nil)

	disabled := activeResource(11)
	disabled.Active = false
	resources.On("GetByID", mock.Anything, int64(1), int64(11)).Return(disabled, nil)

	_, err := service.Update(context.Background(), 1, 7, UpdateReservationRequest{ResourceID: resourceID(11)})

	assert.ErrorIs(t, err, ErrResourceInactive)
}

func TestService_Update_StatusOnlySkipsOverlapCheck(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	current := &domain.Reservation{
		ID:         7,
		TenantID:   1,
		ResourceID: resourceID(10),
		Status:     domain.ReservationPending,
		StartDate:  day(1),
		EndDate:    day(5),
	}

	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(current, nil)
	store.On("WithTx", mock.Anything).Return(nil)
	store.On("Update", mock.Anything, mock.Anything).Return(nil)

	confirmed := domain.ReservationConfirmed
	r, err := service.Update(context.Background(), 1, 7, UpdateReservationRequest{Status: &confirmed})

	assert.NoError(t, err)
	assert.Equal(t, domain.ReservationConfirmed, r.Status)
	store.AssertNotCalled(t, "FindConflicts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update_TerminalReservationRejectsClaimEdits(t *testing.T) {
	store := new(MockReservationStore)
	service := newTestService(store, new(MockResourceStore), new(MockRecurrenceStore))

	current := &domain.Reservation{
		ID:         7,
		TenantID:   1,
		ResourceID: resourceID(10),
		Status:     domain.ReservationCompleted,
		StartDate:  day(1),
		EndDate:    day(5),
	}
	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(current, nil)

	end := day(8)
	_, err := service.Update(context.Background(), 1, 7, UpdateReservationRequest{EndDate: &end})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Update_IllegalStatusPatch(t *testing.T) {
	store := new(MockReservationStore)
	service := newTestService(store, new(MockResourceStore), new(MockRecurrenceStore))

	current := &domain.Reservation{
		ID:        7,
		TenantID:  1,
		Status:    domain.ReservationPending,
		StartDate: day(1),
		EndDate:   day(5),
	}
	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(current, nil)

	completed := domain.ReservationCompleted
	_, err := service.Update(context.Background(), 1, 7, UpdateReservationRequest{Status: &completed})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Update_NotFound(t *testing.T) {
	store := new(MockReservationStore)
	service := newTestService(store, new(MockResourceStore), new(MockRecurrenceStore))

	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(nil, repository.ErrNotFound)

	_, err := service.Update(context.Background(), 1, 7, UpdateReservationRequest{})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_TransitionStatus_CheckInFlow(t *testing.T) {
	store := new(MockReservationStore)
	service := newTestService(store, new(MockResourceStore), new(MockRecurrenceStore))

	current := &domain.Reservation{
		ID:        7,
		TenantID:  1,
		Status:    domain.ReservationConfirmed,
		StartDate: day(1),
		EndDate:   day(5),
	}
	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(current, nil)
	store.On("WithTx", mock.Anything).Return(nil)
	store.On("UpdateStatus", mock.Anything, int64(1), int64(7), domain.ReservationCheckedIn, (*time.Time)(nil)).Return(nil)

	r, err := service.TransitionStatus(context.Background(), 1, 7, domain.ReservationCheckedIn)

	assert.NoError(t, err)
	assert.Equal(t, domain.ReservationCheckedIn, r.Status)
	store.AssertExpectations(t)
}

func TestService_TransitionStatus_CancelSetsTimestamp(t *testing.T) {
	store := new(MockReservationStore)
	service := newTestService(store, new(MockResourceStore), new(MockRecurrenceStore))

	current := &domain.Reservation{
		ID:        7,
		TenantID:  1,
		Status:    domain.ReservationPending,
		StartDate: day(1),
		EndDate:   day(5),
	}
	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(current, nil)
	store.On("WithTx", mock.Anything).Return(nil)
	store.On("UpdateStatus", mock.Anything, int64(1), int64(7), domain.ReservationCancelled, mock.Anything).Return(nil)

	r, err := service.TransitionStatus(context.Background(), 1, 7, domain.ReservationCancelled)

	assert.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, r.Status)
	assert.NotNil(t, r.CancelledAt)
}

func TestService_TransitionStatus_TerminalIsFrozen(t *testing.T) {
	store := new(MockReservationStore)
	service := newTestService(store, new(MockResourceStore), new(MockRecurrenceStore))

	current := &domain.Reservation{
		ID:        7,
		TenantID:  1,
		Status:    domain.ReservationCancelled,
		StartDate: day(1),
		EndDate:   day(5),
	}
	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(current, nil)

	_, err := service.TransitionStatus(context.Background(), 1, 7, domain.ReservationConfirmed)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_TransitionStatus_NotFound(t *testing.T) {
	store := new(MockReservationStore)
	service := newTestService(store, new(MockResourceStore), new(MockRecurrenceStore))

	store.On("GetByID", mock.Anything, int64(1), int64(7)).Return(nil, repository.ErrNotFound)

	_, err := service.TransitionStatus(context.Background(), 1, 7, domain.ReservationConfirmed)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Import_TerminalSkipsOverlapAndLivenessChecks(t *testing.T) {
	store := new(MockReservationStore)
	resources := new(MockResourceStore)
	service := newTestService(store, resources, new(MockRecurrenceStore))

	// the suite was disabled after the historical stay ended
	disabled := activeResource(10)
	disabled.Active = false
	resources.On("GetByID", mock.Anything, int64(1), int64(10)).Return(disabled, nil)
	store.On("WithTx", mock.Anything).Return(nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := service.Import(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		ResourceID: resourceID(10),
		StartDate:  day(1),
		EndDate:    day(5),
		Status:     domain.ReservationCancelled,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, r.Status)
	assert.NotNil(t, r.CancelledAt)
	store.AssertNotCalled(t, "FindConflicts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Import_InvalidStatus(t *testing.T) {
	service := newTestService(new(MockReservationStore), new(MockResourceStore), new(MockRecurrenceStore))

	_, err := service.Import(context.Background(), 1, CreateReservationRequest{
		CustomerID: 100,
		PetID:      500,
		StartDate:  day(1),
		EndDate:    day(5),
		Status:     domain.ReservationStatus("archived"),
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_FindConflicts_RejectsEmptyInterval(t *testing.T) {
	service := newTestService(new(MockReservationStore), new(MockResourceStore), new(MockRecurrenceStore))

	_, err := service.FindConflicts(context.Background(), 1, 10, day(3), day(3), 0)

	assert.ErrorIs(t, err, ErrValidation)
}
