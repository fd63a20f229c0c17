package admin

import (
	"context"
	"time"

	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/internal/models"
	"github.com/stackos/landing/pkg/constants"
	apperrors "github.com/stackos/landing/pkg/errors"
)

// Dashboard is a consistent view of the waitlist at GeneratedAt.
type Dashboard struct {
	Total       int64
	Last7Days   int64
	Last30Days  int64
	Recent      []models.WaitlistEntry
	GeneratedAt time.Time
}

type AdminService interface {
	// Dashboard loads counters and recent signups. Any query failure fails the whole call.
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type adminService struct {
	logger     *log.Logger
	repository AdminRepository
	now        func() time.Time
}

func NewAdminService(logger *log.Logger, repository AdminRepository) AdminService {
	return &adminService{
		logger:     logger,
		repository: repository,
		now:        time.Now,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)
	now := s.now().UTC()

	snapshot, err := s.repository.Snapshot(ctx, now)
	if err != nil {
		logger.Error("Failed to load dashboard", "error", err, "type", apperrors.GetErrorType(err))
		return nil, err
	}

	recent := snapshot.Recent
	if len(recent) > constants.RecentSignupsLimit {
		recent = recent[:constants.RecentSignupsLimit]
	}

	return &Dashboard{
		Total:       snapshot.Total,
		Last7Days:   snapshot.Last7Days,
		Last30Days:  snapshot.Last30Days,
		Recent:      recent,
		GeneratedAt: now,
	}, nil
}
