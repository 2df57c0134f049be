package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tailtown/internal/domain"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

type resourceModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	TenantID  int64     `gorm:"column:tenant_id;index:idx_resources_tenant_name,priority:1"`
	Name      string    `gorm:"column:name;index:idx_resources_tenant_name,priority:2"`
	Type      string    `gorm:"column:type;index"`
	Capacity  int       `gorm:"column:capacity"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (resourceModel) TableName() string { return "resources" }

// ResourceModel is exposed for schema migration only.
func ResourceModel() interface{} { return &resourceModel{} }

func toDomainResource(m resourceModel) *domain.Resource {
	return &domain.Resource{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Name:      m.Name,
		Type:      domain.ResourceType(m.Type),
		Capacity:  m.Capacity,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// GetActiveResources lists active resources ordered by name. An empty
// typeFilter matches every type.
func (r *ResourceRepository) GetActiveResources(ctx context.Context, tenantID int64, typeFilter domain.ResourceType) ([]domain.Resource, error) {
	q := r.db.WithContext(ctx).
		Model(&resourceModel{}).
		Where("tenant_id = ?", tenantID).
		Where("active = ?", true).
		Order("name")
	if typeFilter != "" {
		q = q.Where("type = ?", string(typeFilter))
	}

	var rows []resourceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Resource, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainResource(m))
	}
	return out, nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Resource, error) {
	var m resourceModel
	tx := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m)
	if tx.Error != nil {
		return nil, notFound(tx.Error)
	}
	return toDomainResource(m), nil
}

func (r *ResourceRepository) GetByName(ctx context.Context, tenantID int64, name string) (*domain.Resource, error) {
	var m resourceModel
	tx := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&m)
	if tx.Error != nil {
		return nil, notFound(tx.Error)
	}
	return toDomainResource(m), nil
}

func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	now := time.Now().UTC()
	m := resourceModel{
		TenantID:  res.TenantID,
		Name:      res.Name,
		Type:      string(res.Type),
		Capacity:  res.Capacity,
		Active:    res.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	res.ID = m.ID
	res.CreatedAt = m.CreatedAt
	res.UpdatedAt = m.UpdatedAt
	return nil
}

// SetActive flips the soft-disable flag. Resources referenced by
// reservations are never deleted.
func (r *ResourceRepository) SetActive(ctx context.Context, tenantID, id int64, active bool) error {
	tx := r.db.WithContext(ctx).
		Table("resources").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"active":     active,
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
