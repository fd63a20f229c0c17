// Package circuitbreaker stops calling a dependency that keeps failing and
// probes it again after a cool-down.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling fn while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState is the current circuit breaker state.
type CircuitState int

const (
	Closed CircuitState = iota
	Open
	HalfOpen
)

var stateNames = map[CircuitState]string{
	Closed:   "closed",
	Open:     "open",
	HalfOpen: "half_open",
}

func (s CircuitState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// CircuitBreaker guards calls to a remote dependency and opens after repeated failures.
type CircuitBreaker interface {
	Call(ctx context.Context, fn func(ctx context.Context) error) error
	State() CircuitState
	Metrics() CircuitBreakerMetrics
	Reset()
}

type Config struct {
	// FailureThreshold consecutive failures open a closed breaker.
	FailureThreshold int
	// RecoveryTimeout is how long an open breaker rejects calls before a probe.
	RecoveryTimeout time.Duration
	// SuccessThreshold probes must succeed before a half-open breaker closes.
	SuccessThreshold int

	// IsFailure decides whether an error returned by fn counts against the circuit.
	// Nil counts every error. Errors returned after ctx is done never count.
	IsFailure func(error) bool

	// OnStateChange runs after every transition, outside the breaker's lock.
	OnStateChange func(from, to CircuitState)
}

func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 1,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = defaults.RecoveryTimeout
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = defaults.SuccessThreshold
	}
	return c
}

// CircuitBreakerMetrics is a point-in-time copy of the breaker's counters.
type CircuitBreakerMetrics struct {
	State        CircuitState
	FailureCount int
	SuccessCount int
	LastFailure  time.Time
	NextAttempt  time.Time
}

type circuitBreaker struct {
	config Config
	now    func() time.Time

	mu sync.Mutex
	// snapshot doubles as the breaker's live state.
	snapshot CircuitBreakerMetrics
}

// NewCircuitBreaker returns a circuit breaker and applies defaults when config is nil.
func NewCircuitBreaker(config *Config) CircuitBreaker {
	return newCircuitBreaker(config, time.Now)
}

func newCircuitBreaker(config *Config, now func() time.Time) *circuitBreaker {
	var cfg Config
	if config != nil {
		cfg = *config
	}
	return &circuitBreaker{config: cfg.withDefaults(), now: now}
}

func (cb *circuitBreaker) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !cb.admit() {
		return ErrCircuitOpen
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		// Calls abandoned by the caller are not recorded.
		return err
	}
	cb.record(err != nil && cb.countsAsFailure(err))
	return err
}

// admit lets the call through unless the breaker is open and still cooling down.
func (cb *circuitBreaker) admit() bool {
	cb.mu.Lock()
	s := &cb.snapshot
	from := s.State
	if s.State == Open && cb.now().After(s.NextAttempt) {
		s.State = HalfOpen
		s.SuccessCount = 0
	}
	to := s.State
	cb.mu.Unlock()

	cb.notify(from, to)
	return to != Open
}

func (cb *circuitBreaker) record(failed bool) {
	cb.mu.Lock()
	s := &cb.snapshot
	from := s.State
	now := cb.now()

	if failed {
		s.FailureCount++
		s.LastFailure = now
		if s.State == HalfOpen || (s.State == Closed && s.FailureCount >= cb.config.FailureThreshold) {
			s.State = Open
			s.NextAttempt = now.Add(cb.config.RecoveryTimeout)
		}
	} else {
		s.FailureCount = 0
		if s.State == HalfOpen {
			s.SuccessCount++
			if s.SuccessCount >= cb.config.SuccessThreshold {
				s.State = Closed
				s.SuccessCount = 0
			}
		}
	}
	to := s.State
	cb.mu.Unlock()

	cb.notify(from, to)
}

func (cb *circuitBreaker) notify(from, to CircuitState) {
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

func (cb *circuitBreaker) countsAsFailure(err error) bool {
	if cb.config.IsFailure == nil {
		return true
	}
	return cb.config.IsFailure(err)
}

func (cb *circuitBreaker) State() CircuitState {
	return cb.Metrics().State
}

func (cb *circuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.snapshot
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.snapshot.State
	cb.snapshot = CircuitBreakerMetrics{}
	cb.mu.Unlock()

	cb.notify(from, Closed)
}
