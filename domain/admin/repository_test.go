package admin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stackos/landing/internal/models"
	"github.com/stackos/landing/internal/testsupport"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, db *gorm.DB, email string, age time.Duration) {
	t.Helper()
	entry := &models.WaitlistEntry{Email: email, CreatedAt: fixedNow.Add(-age)}
	require.NoError(t, db.Create(entry).Error)
}

func TestAdminRepository_Snapshot(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		repo := NewAdminRepository(testsupport.NewSQLiteDB(t))

		snapshot, err := repo.Snapshot(context.Background(), fixedNow)

		require.NoError(t, err)
		assert.Zero(t, snapshot.Total)
		assert.Zero(t, snapshot.Last7Days)
		assert.Zero(t, snapshot.Last30Days)
		assert.Empty(t, snapshot.Recent)
	})

	t.Run("counts by window and caps the recent list", func(t *testing.T) {
		db := testsupport.NewSQLiteDB(t)
		day := 24 * time.Hour

		seed(t, db, "newest@example.com", time.Hour)
		seed(t, db, "two-days@example.com", 2*day)
		seed(t, db, "almost-week@example.com", 7*day-time.Minute)
		seed(t, db, "ten-days@example.com", 10*day)
		seed(t, db, "almost-month@example.com", 30*day-time.Minute)
		for i := 0; i < 20; i++ {
			seed(t, db, fmt.Sprintf("old-%02d@example.com", i), time.Duration(40+i)*day)
		}

		snapshot, err := NewAdminRepository(db).Snapshot(context.Background(), fixedNow)

		require.NoError(t, err)
		assert.Equal(t, int64(25), snapshot.Total)
		assert.Equal(t, int64(3), snapshot.Last7Days)
		assert.Equal(t, int64(5), snapshot.Last30Days)
		require.Len(t, snapshot.Recent, 20)
		assert.Equal(t, "newest@example.com", snapshot.Recent[0].Email)
		assert.Equal(t, "old-14@example.com", snapshot.Recent[19].Email)

		for i := 1; i < len(snapshot.Recent); i++ {
			assert.False(t, snapshot.Recent[i].CreatedAt.After(snapshot.Recent[i-1].CreatedAt))
		}
	})

	t.Run("failure is classified", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		snapshot, err := NewAdminRepository(testsupport.NewSQLiteDB(t)).Snapshot(canceled, fixedNow)

		assert.Nil(t, snapshot)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
	})
}
