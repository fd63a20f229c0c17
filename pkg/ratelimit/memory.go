package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	emptyKey = "__empty__"
	// sweepEvery is how many calls pass between evictions of idle keys.
	sweepEvery = 1024
)

// InMemoryRateLimiter keeps one token bucket per key. Counts are not shared
// between instances.
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   uint64
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		now:      time.Now,
		buckets:  make(map[string]*bucket),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) IsLimited(_ context.Context, key string) (bool, error) {
	if key == "" {
		key = emptyKey
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.bucketFor(key, now)

	r.calls++
	if r.calls%sweepEvery == 0 {
		r.evictIdle(now.Add(-2 * r.window))
	}

	return !b.tokens.AllowN(now, 1), nil
}

func (r *InMemoryRateLimiter) bucketFor(key string, now time.Time) *bucket {
	b, ok := r.buckets[key]
	if !ok {
		refill := rate.Limit(float64(r.requests) / r.window.Seconds())
		b = &bucket{tokens: rate.NewLimiter(refill, r.requests)}
		r.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

func (r *InMemoryRateLimiter) evictIdle(cutoff time.Time) {
	for key, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, key)
		}
	}
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}
