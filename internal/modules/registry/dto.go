package registry

import "tailtown/internal/domain"

type CreateResourceRequest struct {
	Name     string              `json:"name" binding:"required"`
	Type     domain.ResourceType `json:"type" binding:"required"`
	Capacity int                 `json:"capacity"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
