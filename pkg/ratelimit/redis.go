package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const DefaultKeyPrefix = "ratelimit:"

// slidingWindowScript keeps one sorted-set member per admitted request, scored by
// unix seconds. It returns 1 when the window is already full and records nothing.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
if redis.call('ZCARD', key) >= limit then
	return 1
end

redis.call('ZADD', key, now, ARGV[5])
redis.call('EXPIRE', key, tonumber(ARGV[4]))
return 0
`)

// RedisRateLimiter is a sliding-window limiter shared by every instance using the same Redis.
type RedisRateLimiter struct {
	client    *redis.Client
	requests  int
	window    time.Duration
	keyPrefix string
	logger    Logger
}

func NewRedisRateLimiter(client *redis.Client, requests int, window time.Duration, logger Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		requests:  requests,
		window:    window,
		keyPrefix: DefaultKeyPrefix,
		logger:    logger,
	}
}

func (r *RedisRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *RedisRateLimiter) redisKey(key string) string {
	if r.keyPrefix == "" || strings.HasPrefix(key, r.keyPrefix) {
		return key
	}
	return r.keyPrefix + key
}

func (r *RedisRateLimiter) IsLimited(ctx context.Context, key string) (bool, error) {
	redisKey := r.redisKey(key)

	full, err := slidingWindowScript.Run(ctx, r.client, []string{redisKey},
		time.Now().Unix(),
		int64(r.window.Seconds()),
		r.requests,
		int64((2 * r.window).Seconds()),
		uuid.NewString(),
	).Int64()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script failed", "key", redisKey, "error", err)
		}
		// The caller decides whether to fail open.
		return false, fmt.Errorf("rate limiter redis: %w", err)
	}

	return full == 1, nil
}

// Close leaves the client open. It belongs to the application cache.
func (r *RedisRateLimiter) Close() error {
	return nil
}
