package factory

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stackos/landing/pkg/constants"
	"github.com/stackos/landing/pkg/ratelimit"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

// Policy is a named request budget. Each policy gets its own key space.
type Policy struct {
	Name     string
	Requests int
	Window   time.Duration
}

var (
	WaitlistSubmissionPolicy = Policy{
		Name:     "waitlist",
		Requests: constants.WaitlistSubmissionsPerMinute,
		Window:   time.Minute,
	}
	LoginPolicy = Policy{
		Name:     "login",
		Requests: constants.LoginAttemptsPerMinute,
		Window:   time.Minute,
	}
	MonitoringPolicy = Policy{
		Name:     "monitoring",
		Requests: constants.MonitoringRequestsPerMinute,
		Window:   time.Minute,
	}
)

type RateLimiterFactory interface {
	CreateRateLimiter(policy Policy) ratelimit.RateLimiter
}

type DefaultRateLimiterFactory struct {
	redis  *redis.Client
	logger ratelimit.Logger
}

// NewDefaultRateLimiterFactory builds Redis-backed limiters when cache exposes a client
// and in-memory limiters otherwise.
func NewDefaultRateLimiterFactory(cache Cache, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	var redisClient *redis.Client
	if cache != nil {
		if provider, ok := cache.(RedisClientProvider); ok {
			redisClient = provider.GetClient()
		}
	}

	return &DefaultRateLimiterFactory{
		redis:  redisClient,
		logger: logger,
	}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter(policy Policy) ratelimit.RateLimiter {
	window := policy.Window
	if window <= 0 {
		window = constants.DefaultRateLimitWindow()
	}

	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests:  policy.Requests,
		Window:    window,
		KeyPrefix: "ratelimit:" + policy.Name + ":",
		Redis:     f.redis,
		Logger:    f.logger,
	})
}
