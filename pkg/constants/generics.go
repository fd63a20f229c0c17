package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// DisplayDateTimeFormat is used when rendering timestamps on HTML pages.
const DisplayDateTimeFormat = "2006-01-02 15:04:05 MST"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindow is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1

	// WaitlistSubmissionsPerMinute bounds signups per client IP.
	WaitlistSubmissionsPerMinute = 30
	// LoginAttemptsPerMinute bounds sign-in attempts per client IP.
	LoginAttemptsPerMinute = 10
	// MonitoringRequestsPerMinute bounds /status and /health per client IP.
	MonitoringRequestsPerMinute = 10
)

// Admin dashboard
const (
	RecentSignupsLimit = 20
	ShortWindowDays    = 7
	LongWindowDays     = 30
)

// Session gate
const (
	SessionCookieName    = "stackos_session"
	DefaultLoginRedirect = "/admin"
	LoginPath            = "/login"
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

// DaysAgo returns the instant n*24h before now, in UTC.
func DaysAgo(now time.Time, n int) time.Time {
	return now.UTC().Add(-time.Duration(n) * 24 * time.Hour)
}
