package registry

import (
	"context"
	"errors"

	"tailtown/internal/domain"
	"tailtown/internal/pkg/validator"
	"tailtown/internal/repository"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("resource not found")
)

// ResourceStore is the persistence collaborator for bookable units.
type ResourceStore interface {
	GetActiveResources(ctx context.Context, tenantID int64, typeFilter domain.ResourceType) ([]domain.Resource, error)
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Resource, error)
	Create(ctx context.Context, res *domain.Resource) error
	SetActive(ctx context.Context, tenantID, id int64, active bool) error
}

type Service struct {
	resources ResourceStore
}

func NewService(resources ResourceStore) *Service {
	return &Service{resources: resources}
}

// ListActive returns the live bookable units, ordered by name. An empty
// typeFilter matches every type.
func (s *Service) ListActive(ctx context.Context, tenantID int64, typeFilter domain.ResourceType) ([]domain.Resource, error) {
	if typeFilter != "" && !typeFilter.Valid() {
		return nil, ErrValidation
	}
	return s.resources.GetActiveResources(ctx, tenantID, typeFilter)
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (*domain.Resource, error) {
	res, err := s.resources.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) Create(ctx context.Context, tenantID int64, req CreateResourceRequest) (*domain.Resource, error) {
	if !req.Type.Valid() {
		return nil, ErrValidation
	}
	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 1
	}

	res := &domain.Resource{
		TenantID: tenantID,
		Name:     req.Name,
		Type:     req.Type,
		Capacity: capacity,
		Active:   true,
	}
	if errs := validator.Validate(res); len(errs) > 0 {
		return nil, ErrValidation
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// SetActive soft-disables or re-enables a unit. Disabling never touches
// existing reservations; it only blocks new claims.
func (s *Service) SetActive(ctx context.Context, tenantID, id int64, active bool) (*domain.Resource, error) {
	if err := s.resources.SetActive(ctx, tenantID, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}
