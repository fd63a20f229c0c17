package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/authprovider"
	"github.com/stackos/landing/pkg/factory"
)

type Config struct {
	Provider    authprovider.Provider
	Verifier    authprovider.TokenVerifier
	Store       TokenStore
	AdminEmails []string
	Cookies     CookieConfig
}

type SessionServiceFactory interface {
	CreateService() SessionService
	CreateControllers() []*router.RESTController
	// RequireSession guards routes of other domains with the same service.
	RequireSession() router.MiddlewareFunc
}

type DefaultSessionServiceFactory struct {
	config   Config
	logger   *log.Logger
	limiters factory.RateLimiterFactory
	metrics  *Metrics
	service  SessionService
}

func NewSessionServiceFactory(config Config, logger *log.Logger, limiters factory.RateLimiterFactory, reg prometheus.Registerer) SessionServiceFactory {
	return &DefaultSessionServiceFactory{
		config:   config,
		logger:   logger,
		limiters: limiters,
		metrics:  NewMetrics(reg),
	}
}

func (f *DefaultSessionServiceFactory) CreateService() SessionService {
	if f.service == nil {
		f.service = NewSessionService(
			f.logger,
			f.config.Provider,
			f.config.Verifier,
			NewDenylist(f.config.Store),
			f.config.AdminEmails,
			f.metrics,
		)
	}
	return f.service
}

// CreateControllers returns the form and JSON login controllers. They share the login limiter.
func (f *DefaultSessionServiceFactory) CreateControllers() []*router.RESTController {
	service := f.CreateService()
	limiter := f.limiters.CreateRateLimiter(factory.LoginPolicy)

	return []*router.RESTController{
		NewSessionController(service, limiter, f.config.Cookies),
		NewSessionAPIController(service, limiter, f.config.Cookies),
	}
}

func (f *DefaultSessionServiceFactory) RequireSession() router.MiddlewareFunc {
	return RequireSession(f.CreateService(), f.config.Cookies)
}
