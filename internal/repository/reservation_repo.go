package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"tailtown/internal/domain"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type reservationModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	TenantID    int64      `gorm:"column:tenant_id;index:idx_reservations_tenant_resource,priority:1"`
	CustomerID  int64      `gorm:"column:customer_id;index"`
	PetID       int64      `gorm:"column:pet_id;index"`
	ResourceID  *int64     `gorm:"column:resource_id;index:idx_reservations_tenant_resource,priority:2"`
	ServiceID   int64      `gorm:"column:service_id"`
	Status      string     `gorm:"column:status;index"`
	StartDate   time.Time  `gorm:"column:start_date;index"`
	EndDate     time.Time  `gorm:"column:end_date"`
	OrderNumber string     `gorm:"column:order_number"`
	Notes       *string    `gorm:"column:notes;type:text"`
	ExternalID  *string    `gorm:"column:external_id;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
}

func (reservationModel) TableName() string { return "reservations" }

// ReservationModel is exposed for schema migration only.
func ReservationModel() interface{} { return &reservationModel{} }

func toDomainReservation(m reservationModel) *domain.Reservation {
	var notes, externalID string
	if m.Notes != nil {
		notes = *m.Notes
	}
	if m.ExternalID != nil {
		externalID = *m.ExternalID
	}

	return &domain.Reservation{
		ID:          m.ID,
		TenantID:    m.TenantID,
		CustomerID:  m.CustomerID,
		PetID:       m.PetID,
		ResourceID:  m.ResourceID,
		ServiceID:   m.ServiceID,
		Status:      domain.ReservationStatus(m.Status),
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		OrderNumber: m.OrderNumber,
		Notes:       notes,
		ExternalID:  externalID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CancelledAt: m.CancelledAt,
	}
}

func toReservationModel(r *domain.Reservation) reservationModel {
	var notes, externalID *string
	if r.Notes != "" {
		v := r.Notes
		notes = &v
	}
	if r.ExternalID != "" {
		v := r.ExternalID
		externalID = &v
	}

	return reservationModel{
		ID:          r.ID,
		TenantID:    r.TenantID,
		CustomerID:  r.CustomerID,
		PetID:       r.PetID,
		ResourceID:  r.ResourceID,
		ServiceID:   r.ServiceID,
		Status:      string(r.Status),
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		OrderNumber: r.OrderNumber,
		Notes:       notes,
		ExternalID:  externalID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CancelledAt: r.CancelledAt,
	}
}

func activeStatusValues() []string {
	out := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		out = append(out, string(s))
	}
	return out
}

// ReservationTx is the slice of the repository usable inside WithTx.
type ReservationTx interface {
	FindConflicts(ctx context.Context, tenantID, resourceID int64, start, end time.Time, excludeID int64) ([]domain.Reservation, error)
	Create(ctx context.Context, res *domain.Reservation) error
	Update(ctx context.Context, res *domain.Reservation) error
	UpdateStatus(ctx context.Context, tenantID, id int64, status domain.ReservationStatus, cancelledAt *time.Time) error
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Reservation, error)
}

// WithTx runs fn inside a single transaction so the conflict query and
// the write form one atomic unit. On Postgres the transaction is
// SERIALIZABLE; a racing writer aborts with a serialization failure the
// caller retries. SQLite serializes writers on its own lock.
func (r *ReservationRepository) WithTx(ctx context.Context, fn func(tx ReservationTx) error) error {
	var opts []*sql.TxOptions
	if r.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ReservationRepository{db: tx})
	}, opts...)
}

// FindConflicts returns active reservations on the resource whose
// half-open interval intersects [start, end), oldest first. A zero
// excludeID excludes nothing.
func (r *ReservationRepository) FindConflicts(ctx context.Context, tenantID, resourceID int64, start, end time.Time, excludeID int64) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("tenant_id = ?", tenantID).
		Where("resource_id = ?", resourceID).
		Where("status IN ?", activeStatusValues()).
		Where("start_date < ? AND end_date > ?", end, start).
		Order("start_date")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var rows []reservationModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	res.ID = m.ID
	res.CreatedAt = m.CreatedAt
	res.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	m.UpdatedAt = time.Now().UTC()

	tx := r.db.WithContext(ctx).
		Where("tenant_id = ?", res.TenantID).
		Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	res.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Reservation, error) {
	var m reservationModel
	tx := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m)
	if tx.Error != nil {
		return nil, notFound(tx.Error)
	}
	return toDomainReservation(m), nil
}

func (r *ReservationRepository) GetByExternalID(ctx context.Context, tenantID int64, externalID string) (*domain.Reservation, error) {
	var m reservationModel
	tx := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&m)
	if tx.Error != nil {
		return nil, notFound(tx.Error)
	}
	return toDomainReservation(m), nil
}

// ListByResourceAndRange returns every reservation (any status) on the
// resource intersecting [from, to), for calendar views.
func (r *ReservationRepository) ListByResourceAndRange(ctx context.Context, tenantID, resourceID int64, from, to time.Time) ([]domain.Reservation, error) {
	var rows []reservationModel
	tx := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("resource_id = ?", resourceID).
		Where("start_date < ? AND end_date > ?", to, from).
		Order("start_date").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, tenantID, id int64, status domain.ReservationStatus, cancelledAt *time.Time) error {
	fields := map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	if cancelledAt != nil {
		fields["cancelled_at"] = *cancelledAt
	}

	tx := r.db.WithContext(ctx).
		Table("reservations").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
