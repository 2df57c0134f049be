package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist within the tenant.
var ErrNotFound = errors.New("not found")

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// IsRetryableTxError reports whether the error is a transient
// transaction abort worth retrying: a Postgres serialization failure or
// deadlock, or an SQLite busy lock. Anything else is permanent.
func IsRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// IsOverlapViolation reports whether the error came from the
// reservations_no_overlap exclusion constraint, i.e. the storage layer
// rejected a racing insert the application-level check did not see.
func IsOverlapViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return (pgErr.Code == "23P01" || pgErr.Code == "23505") &&
			pgErr.ConstraintName == "reservations_no_overlap"
	}
	return false
}
