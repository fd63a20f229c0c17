// Package ratelimit answers "has this key used up its allowance" either per
// process or across instances through Redis.
package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Logger interface {
	Error(msg string, args ...interface{})
}

// RateLimiter reports whether key has exceeded Requests per Window.
// A limiter that cannot decide returns an error and leaves the policy to the caller.
type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	IsLimited(ctx context.Context, key string) (bool, error)
	Close() error
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	// KeyPrefix namespaces Redis keys. Defaults to DefaultKeyPrefix.
	KeyPrefix string
	// Redis selects the shared limiter. Nil keeps counts in process memory.
	Redis  *redis.Client
	Logger Logger
}

func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	if config.Redis == nil {
		return NewInMemoryRateLimiter(config.Requests, config.Window)
	}

	limiter := NewRedisRateLimiter(config.Redis, config.Requests, config.Window, config.Logger)
	if config.KeyPrefix != "" {
		limiter.keyPrefix = config.KeyPrefix
	}
	return limiter
}
