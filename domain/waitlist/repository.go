package waitlist

import (
	"context"

	"github.com/stackos/landing/internal/models"
	apperrors "github.com/stackos/landing/pkg/errors"
	"gorm.io/gorm"
)

var createEntryMessages = apperrors.DatabaseMessages{
	Conflict:    "This email is already on the waitlist.",
	Unavailable: "The waitlist is temporarily unavailable. Please try again.",
	Invalid:     "Please enter a valid email address.",
	Default:     MessageFallback,
}

type WaitlistRepository interface {
	// CreateEntry inserts exactly one row. A duplicate email yields a CONFLICT AppError.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := wr.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, apperrors.ClassifyDatabaseError(err, createEntryMessages)
	}

	return entry, nil
}
