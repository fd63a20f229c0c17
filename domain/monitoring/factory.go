package monitoring

import (
	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/factory"
	"gorm.io/gorm"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	db       *gorm.DB
	logger   *log.Logger
	cache    Cache
	queue    MessageQueue
	limiters factory.RateLimiterFactory
}

func NewMonitoringControllerFactory(db *gorm.DB, logger *log.Logger, cache Cache, queue MessageQueue, limiters factory.RateLimiterFactory) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		db:       db,
		logger:   logger,
		cache:    cache,
		queue:    queue,
		limiters: limiters,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	limiter := f.limiters.CreateRateLimiter(factory.MonitoringPolicy)
	return NewMonitoringController(f.db, f.logger, f.cache, f.queue, limiter)
}
