package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tailtown/internal/domain"
)

type RecurrenceRepository struct {
	db *gorm.DB
}

func NewRecurrenceRepository(db *gorm.DB) *RecurrenceRepository {
	return &RecurrenceRepository{db: db}
}

type recurrencePatternModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	TenantID      int64      `gorm:"column:tenant_id;index"`
	ReservationID int64      `gorm:"column:reservation_id;uniqueIndex"`
	Frequency     string     `gorm:"column:frequency"`
	Interval      int        `gorm:"column:interval"`
	Count         *int       `gorm:"column:count"`
	Until         *time.Time `gorm:"column:until"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (recurrencePatternModel) TableName() string { return "recurrence_patterns" }

// RecurrencePatternModel is exposed for schema migration only.
func RecurrencePatternModel() interface{} { return &recurrencePatternModel{} }

func toDomainPattern(m recurrencePatternModel) *domain.RecurrencePattern {
	return &domain.RecurrencePattern{
		ID:            m.ID,
		TenantID:      m.TenantID,
		ReservationID: m.ReservationID,
		Frequency:     domain.RecurrenceFrequency(m.Frequency),
		Interval:      m.Interval,
		Count:         m.Count,
		Until:         m.Until,
		CreatedAt:     m.CreatedAt,
	}
}

func (r *RecurrenceRepository) GetByReservationID(ctx context.Context, tenantID, reservationID int64) (*domain.RecurrencePattern, error) {
	var m recurrencePatternModel
	tx := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reservation_id = ?", tenantID, reservationID).
		First(&m)
	if tx.Error != nil {
		return nil, notFound(tx.Error)
	}
	return toDomainPattern(m), nil
}

func (r *RecurrenceRepository) Create(ctx context.Context, p *domain.RecurrencePattern) error {
	m := recurrencePatternModel{
		TenantID:      p.TenantID,
		ReservationID: p.ReservationID,
		Frequency:     string(p.Frequency),
		Interval:      p.Interval,
		Count:         p.Count,
		Until:         p.Until,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	return nil
}

// DeleteByReservationID removes a pattern when its template reservation
// is deleted. The generated instances stay.
func (r *RecurrenceRepository) DeleteByReservationID(ctx context.Context, tenantID, reservationID int64) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND reservation_id = ?", tenantID, reservationID).
		Delete(&recurrencePatternModel{}).Error
}
