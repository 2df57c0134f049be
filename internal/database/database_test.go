package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConnect_SQLiteSingleConnection(t *testing.T) {
	db, err := Connect(filepath.Join(t.TempDir(), "conn_test.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_SQLiteConcurrentWritersQueue(t *testing.T) {
	type row struct {
		ID   int64     `gorm:"column:id;primaryKey"`
		Name string    `gorm:"column:name"`
		At   time.Time `gorm:"column:at"`
	}

	db, err := Connect(filepath.Join(t.TempDir(), "busy_test.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db, &row{}))

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- db.WithContext(context.Background()).Transaction(func(tx *gorm.DB) error {
				return tx.Create(&row{Name: "w", At: time.Now().UTC()}).Error
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&row{}).Count(&count).Error)
	assert.EqualValues(t, writers, count)
}
