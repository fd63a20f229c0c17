package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/ratelimit"
	"gorm.io/gorm"
)

const (
	serviceName = "stackos-landing"
	// probeTimeout bounds each dependency ping so one hung backend cannot stall /health.
	probeTimeout = 2 * time.Second
)

type Cache interface {
	Ping(ctx context.Context) error
}

// MessageQueue is anything that can report broker reachability.
type MessageQueue interface {
	Ping(ctx context.Context) error
}

// HealthStatus reports 1 for a reachable dependency and 0 for a failing or
// unconfigured one.
type HealthStatus struct {
	Database     int `json:"database"`
	Cache        int `json:"cache"`
	MessageQueue int `json:"message_queue"`
	Uptime       int `json:"uptime"`
}

type probe struct {
	name   string
	ping   func(ctx context.Context) error
	result func(*HealthStatus) *int
}

type MonitoringController struct {
	probes    []probe
	startTime time.Time
}

func NewMonitoringController(db *gorm.DB, logger *log.Logger, cache Cache, queue MessageQueue, limiter ratelimit.RateLimiter) *router.RESTController {
	ctrl := &MonitoringController{startTime: time.Now()}

	ctrl.probes = append(ctrl.probes, probe{
		name:   "database",
		ping:   databasePing(db),
		result: func(s *HealthStatus) *int { return &s.Database },
	})
	if cache != nil {
		ctrl.probes = append(ctrl.probes, probe{
			name:   "cache",
			ping:   cache.Ping,
			result: func(s *HealthStatus) *int { return &s.Cache },
		})
	}
	if queue != nil {
		ctrl.probes = append(ctrl.probes, probe{
			name:   "message_queue",
			ping:   queue.Ping,
			result: func(s *HealthStatus) *int { return &s.MessageQueue },
		})
	}
	logger.Debug("Health probes configured", "count", len(ctrl.probes))

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			routerService.AddGetHandler(controller, limiter, "status", ctrl.status)
			routerService.AddGetHandler(controller, limiter, "health", ctrl.health)
		},
	)
}

func (ctrl *MonitoringController) status(*router.RequestContext) *router.ServiceResult {
	return router.OKResult(serviceName+" is operational.", "Monitoring successful")
}

func (ctrl *MonitoringController) health(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)
	status := HealthStatus{Uptime: int(time.Since(ctrl.startTime).Seconds())}

	for _, p := range ctrl.probes {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		err := p.ping(ctx)
		cancel()

		if err != nil {
			logger.Error("Health probe failed", "dependency", p.name, "error", err)
			continue
		}
		*p.result(&status) = 1
	}

	return &router.ServiceResult{
		StatusCode: http.StatusOK,
		Data:       status,
		Message:    serviceName + " health check completed",
	}
}

func databasePing(db *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if db == nil {
			return gorm.ErrInvalidDB
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
