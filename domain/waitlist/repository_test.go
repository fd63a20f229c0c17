package waitlist

import (
	"context"
	"testing"

	"github.com/stackos/landing/internal/models"
	"github.com/stackos/landing/internal/testsupport"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistRepository_CreateEntry(t *testing.T) {
	db := testsupport.NewSQLiteDB(t)
	repo := NewWaitlistRepository(db)
	ctx := context.Background()

	entry, err := repo.CreateEntry(ctx, &models.WaitlistEntry{Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	t.Run("second insert of the same email is a conflict", func(t *testing.T) {
		_, err := repo.CreateEntry(ctx, &models.WaitlistEntry{Email: "ada@example.com"})

		assert.True(t, apperrors.IsConflict(err))
		assert.True(t, Classify(err).Duplicate)

		var count int64
		require.NoError(t, db.Model(&models.WaitlistEntry{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("canceled context is unavailable", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := repo.CreateEntry(canceled, &models.WaitlistEntry{Email: "grace@example.com"})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
		assert.Equal(t, createEntryMessages.Unavailable, apperrors.GetHumanReadableMessage(err))
	})
}
