package router

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stackos/landing/pkg/utils"
)

const (
	defaultMaxBodyBytes = int64(1 << 20)
	defaultHSTSMaxAge   = int64(31536000)
)

// securitySettings is read from the environment once, when the router is built.
type securitySettings struct {
	trustedProxies []string
	allowedOrigins []string
	maxBodyBytes   int64
	hstsEnabled    bool
	hstsValue      string
}

func loadSecuritySettings() securitySettings {
	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))

	s := securitySettings{
		trustedProxies: parseTrustedProxies(utils.GetEnvTrimmed("TRUSTED_PROXIES")),
		allowedOrigins: splitCSV(utils.GetEnvTrimmed("CORS_ALLOWED_ORIGIN")),
		maxBodyBytes:   envPositiveInt("MAX_REQUEST_BODY_BYTES", defaultMaxBodyBytes),
		hstsEnabled:    utils.GetEnvBool("HSTS_ENABLED", appEnv == "production" || appEnv == "prod"),
	}

	s.hstsValue = fmt.Sprintf("max-age=%d", envPositiveInt("HSTS_MAX_AGE", defaultHSTSMaxAge))
	if utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true) {
		s.hstsValue += "; includeSubDomains"
	}
	return s
}

// parseTrustedProxies returns nil (trust nobody) for an empty value and every
// address for "*".
func parseTrustedProxies(raw string) []string {
	if raw == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}
	return splitCSV(raw)
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envPositiveInt(key string, fallback int64) int64 {
	if n, err := strconv.ParseInt(utils.GetEnvTrimmed(key), 10, 64); err == nil && n > 0 {
		return n
	}
	return fallback
}

// secureRequest reports whether the client reached us over TLS, directly or
// through a TLS-terminating proxy.
func secureRequest(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func (s securitySettings) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
