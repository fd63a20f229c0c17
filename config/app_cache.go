package config

import (
	"context"
	"errors"
	"time"

	"github.com/stackos/landing/internal/log"
	pkgredis "github.com/stackos/landing/pkg/redis"
	"github.com/stackos/landing/pkg/utils"
)

// Cache backs the session denylist, the Redis rate limiters and the health check.
type Cache interface {
	// Get returns ("", nil) when a key is not found.
	Get(ctx context.Context, key string) (string, error)
	// Set uses ttl=0 for no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var ErrCacheNotConfigured = errors.New("cache host is not configured")

type CacheConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewCacheConfig() *CacheConfig {
	return &CacheConfig{
		Host:     utils.GetEnvTrimmed("REDIS_HOST"),
		Port:     utils.GetEnvTrimmedOrDefault("REDIS_PORT", "6379"),
		Password: GetValueFromEnvironmentVariable("REDIS_PASSWORD", ""),
	}
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.Host != ""
}

func (cc *CacheConfig) NewCache() (Cache, error) {
	if !cc.IsConfigured() {
		return nil, ErrCacheNotConfigured
	}

	cache, err := pkgredis.NewRedisCache(&pkgredis.Config{
		Host:     cc.Host,
		Port:     cc.Port,
		Password: cc.Password,
		DB:       cc.DB,
	})
	if err != nil {
		return nil, err
	}
	return cache, nil
}

// NewCacheOrNil returns nil when Redis is not configured or unreachable. The
// service then runs with in-memory rate limits and without logout revocation.
func (cc *CacheConfig) NewCacheOrNil(logger *log.Logger) Cache {
	if !cc.IsConfigured() {
		logger.Info("Cache (Redis) is not configured; using in-memory rate limits, logout revocation disabled")
		return nil
	}

	cache, err := cc.NewCache()
	if err != nil {
		logger.Error("Failed to connect to cache (Redis); continuing without it", "error", err, "host", cc.Host)
		return nil
	}

	logger.Info("Cache (Redis) connected", "host", cc.Host, "port", cc.Port)
	return cache
}

func CloseCache(cache Cache, logger *log.Logger) {
	if cache == nil {
		return
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close cache", "error", err)
		return
	}
	logger.Info("Cache connection closed")
}
