package waitlist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/events"
	"github.com/stackos/landing/pkg/factory"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateControllers() []*router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db        *gorm.DB
	logger    *log.Logger
	publisher events.Publisher
	limiters  factory.RateLimiterFactory
	metrics   *Metrics
}

func NewWaitlistServiceFactory(
	db *gorm.DB,
	logger *log.Logger,
	publisher events.Publisher,
	limiters factory.RateLimiterFactory,
	reg prometheus.Registerer,
) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:        db,
		logger:    logger,
		publisher: publisher,
		limiters:  limiters,
		metrics:   NewMetrics(reg),
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	repository := NewWaitlistRepository(f.db)
	return NewWaitlistService(f.logger, repository, f.publisher, f.metrics)
}

// CreateControllers returns the HTML and JSON controllers. They share one service
// and one submission limiter, so both paths count against the same budget.
func (f *DefaultWaitlistServiceFactory) CreateControllers() []*router.RESTController {
	service := f.CreateService()
	limiter := f.limiters.CreateRateLimiter(factory.WaitlistSubmissionPolicy)

	return []*router.RESTController{
		NewLandingController(service, limiter),
		NewWaitlistController(service, limiter),
	}
}
