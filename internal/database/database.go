package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// cgo-free sqlite driver for dev and tests
	_ "modernc.org/sqlite"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	if !strings.Contains(dsn, "_pragma") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)"
	}

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
	if err != nil {
		return nil, err
	}

	// sqlite permits one writer at a time; funneling every connection
	// through a single one makes concurrent requests queue instead of
	// failing with SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates the reservation tables and, on Postgres, the
// range-exclusion constraint that rejects overlapping active
// reservations on one resource at the storage layer. The application
// conflict check runs first so callers get a useful conflict list; the
// constraint closes the check-then-insert race across service
// instances. SQLite (dev/tests) has no exclusion constraints and relies
// on the serialized write transaction instead.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`ALTER TABLE reservations DROP CONSTRAINT IF EXISTS reservations_no_overlap`,
		`ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
			EXCLUDE USING gist (
				tenant_id WITH =,
				resource_id WITH =,
				tstzrange(start_date, end_date) WITH &&
			)
			WHERE (resource_id IS NOT NULL AND status IN ('pending', 'confirmed', 'checked_in'))`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply overlap constraint: %w", err)
		}
	}
	return nil
}
