package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/internal/models"
	"github.com/stackos/landing/pkg/constants"
	"github.com/stackos/landing/pkg/events"
	"github.com/stackos/landing/pkg/factory"
	"github.com/stackos/landing/pkg/utils"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Publisher       events.Publisher
	Auth            *Auth
	Limiters        factory.RateLimiterFactory
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
	// TrustedOrigins may post forms cross-origin (CSRF_TRUSTED_ORIGINS, comma-separated).
	TrustedOrigins []string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests: envPositiveInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:    envDuration("REQUEST_TIMEOUT", router.DefaultTimeoutDuration),
		TrustedOrigins:    splitList(os.Getenv("CSRF_TRUSTED_ORIGINS")),
	}
}

func envPositiveInt(key string, fallback int) int {
	if n, err := strconv.Atoi(utils.GetEnvTrimmed(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

// envDuration reads a time.ParseDuration value such as "30s". Non-positive
// or unparsable values yield fallback.
func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(utils.GetEnvTrimmed(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.Publisher != nil {
		ClosePublisher(ac.Publisher, ac.Logger)
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

// LoadApplicationConfiguration connects every backing service. On error the
// services opened so far are released before returning.
func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (_ *ApplicationConfig, err error) {
	InitializeEnvFile(logger)

	appEnv := GetAppEnv()
	if autoMigrate {
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	ac := &ApplicationConfig{Logger: logger, Config: NewAppConfig()}
	defer func() {
		if err != nil {
			ac.Cleanup()
		}
	}()

	if ac.Auth, err = NewAuthConfig(appEnv).NewAuth(logger); err != nil {
		return nil, err
	}
	if ac.TracingShutdown, err = NewTracingConfig(appEnv).Install(logger); err != nil {
		return nil, err
	}
	if ac.DB, err = NewDatabase(logger, serverDBConfig()); err != nil {
		return nil, err
	}
	if autoMigrate {
		if err = AutoMigrate(logger, ac.DB, models.ModelRegistry...); err != nil {
			return nil, err
		}
	}

	ac.Cache = NewCacheConfig().NewCacheOrNil(logger)
	ac.Publisher = NewEventsConfig().NewPublisherOrNop(logger)
	ac.Limiters = factory.NewDefaultRateLimiterFactory(ac.Cache, logger)
	ac.RouterService = router.CreateRouterService(logger, ac.Cache, &router.RouterConfig{
		RateLimitRequests: ac.Config.RateLimitRequests,
		RateLimitWindow:   ac.Config.RateLimitWindow,
		RequestTimeout:    ac.Config.RequestTimeout,
		TrustedOrigins:    ac.Config.TrustedOrigins,
	})

	logger.Info("Application configuration loaded", "app_env", appEnv)
	return ac, nil
}

// serverDBConfig sizes the pool for the long-running server. The CLI keeps DefaultDBConfig.
func serverDBConfig() *DBConfig {
	cfg := DefaultDBConfig()
	cfg.MaxIdleConns = 10
	cfg.MaxOpenConns = 25
	cfg.ConnMaxLifetime = 5 * time.Minute
	return cfg
}
