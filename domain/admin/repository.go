package admin

import (
	"context"
	"database/sql"
	"time"

	"github.com/stackos/landing/internal/models"
	"github.com/stackos/landing/pkg/constants"
	apperrors "github.com/stackos/landing/pkg/errors"
	"gorm.io/gorm"
)

const MessageDashboardUnavailable = "Failed to load dashboard data."

var dashboardMessages = apperrors.DatabaseMessages{
	Unavailable: "The dashboard is temporarily unavailable. Please try again.",
	Default:     MessageDashboardUnavailable,
}

const countsQuery = `SELECT
	COUNT(*) AS total,
	COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS last_7_days,
	COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS last_30_days
FROM waitlist`

// Snapshot is what the dashboard shows, read from a single transaction.
type Snapshot struct {
	Total      int64
	Last7Days  int64
	Last30Days int64
	Recent     []models.WaitlistEntry
}

type signupCounts struct {
	Total      int64 `gorm:"column:total"`
	Last7Days  int64 `gorm:"column:last_7_days"`
	Last30Days int64 `gorm:"column:last_30_days"`
}

type AdminRepository interface {
	// Snapshot counts signups relative to now and loads the most recent ones.
	Snapshot(ctx context.Context, now time.Time) (*Snapshot, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (ar *adminRepository) Snapshot(ctx context.Context, now time.Time) (*Snapshot, error) {
	var (
		counts signupCounts
		recent []models.WaitlistEntry
	)

	err := ar.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(countsQuery,
			constants.DaysAgo(now, constants.ShortWindowDays),
			constants.DaysAgo(now, constants.LongWindowDays),
		).Scan(&counts).Error; err != nil {
			return err
		}

		return tx.Order("created_at DESC").
			Limit(constants.RecentSignupsLimit).
			Find(&recent).Error
	}, ar.txOptions())
	if err != nil {
		return nil, apperrors.ClassifyDatabaseError(err, dashboardMessages)
	}

	return &Snapshot{
		Total:      counts.Total,
		Last7Days:  counts.Last7Days,
		Last30Days: counts.Last30Days,
		Recent:     recent,
	}, nil
}

// txOptions pins counts and list to one snapshot. SQLite transactions are
// already serializable and its driver ignores isolation levels.
func (ar *adminRepository) txOptions() *sql.TxOptions {
	if ar.db.Dialector.Name() != "postgres" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}
