package domain

import "time"

type ResourceType string

const (
	ResourceStandard ResourceType = "standard"
	ResourcePlus     ResourceType = "plus"
	ResourceVIP      ResourceType = "vip"
	ResourceBathing  ResourceType = "bathing"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceStandard, ResourcePlus, ResourceVIP, ResourceBathing:
		return true
	}
	return false
}

// Resource is a bookable physical unit: a kennel, suite, or bathing
// station. Resources referenced by reservations are soft-disabled via
// the active flag, never deleted.
type Resource struct {
	ID        int64        `json:"id"`
	TenantID  int64        `json:"tenant_id"`
	Name      string       `json:"name" validate:"required"`
	Type      ResourceType `json:"type" validate:"required"`
	Capacity  int          `json:"capacity"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
