package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stackos/landing/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountTestController(rs *RouterService) {
	ctrl := NewRESTController("TestController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "ip", func(ctx *RequestContext) *ServiceResult {
			return OKResult(ctx.ClientIP(), "ok")
		})

		rs.AddPostHandler(c, nil, "echo", func(ctx *RequestContext) *ServiceResult {
			var payload map[string]any
			if err := ctx.ShouldBindJSON(&payload); err != nil {
				return BadRequestResult("bad", nil)
			}
			return OKResult(payload, "ok")
		})
	})

	rs.MountController(ctrl)
}

func newTestRouterService(t *testing.T) *RouterService {
	t.Helper()

	return CreateRouterService(log.NewLoggerWithJSONOutput(), nil, &RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
}

func clientIPSeen(t *testing.T, rs *RouterService) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestTrustedProxies(t *testing.T) {
	tests := []struct {
		name    string
		proxies string
		want    string
	}{
		{"unset uses the socket address", "", "10.0.0.2"},
		{"star trusts forwarded for", "*", "198.51.100.7"},
		{"listed proxy is trusted", "10.0.0.0/8", "198.51.100.7"},
		{"other proxy is ignored", "192.168.0.1", "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TRUSTED_PROXIES", tt.proxies)

			rs := newTestRouterService(t)
			mountTestController(rs)

			assert.Equal(t, tt.want, clientIPSeen(t, rs))
		})
	}
}

func TestMaxBodySize_Returns413(t *testing.T) {
	t.Setenv("MAX_REQUEST_BODY_BYTES", "10")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(bytes.Repeat([]byte{'a'}, 50)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HSTS_ENABLED", "")
	t.Setenv("HSTS_MAX_AGE", "600")
	t.Setenv("HSTS_INCLUDE_SUBDOMAINS", "false")

	rs := newTestRouterService(t)
	mountTestController(rs)

	t.Run("plain http gets no HSTS", func(t *testing.T) {
		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ip", nil))

		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("https behind a proxy gets HSTS", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		req.Header.Set("X-Forwarded-Proto", "https")

		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, req)

		assert.Equal(t, "max-age=600", w.Header().Get("Strict-Transport-Security"))
	})
}

func TestCORS(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://stackos.io, https://www.stackos.io")

	rs := newTestRouterService(t)
	mountTestController(rs)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		req.Header.Set("Origin", "https://www.stackos.io")

		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, req)

		assert.Equal(t, "https://www.stackos.io", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		req.Header.Set("Origin", "https://evil.example")

		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLoadSecuritySettings_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "HSTS_ENABLED", "HSTS_MAX_AGE", "HSTS_INCLUDE_SUBDOMAINS", "MAX_REQUEST_BODY_BYTES", "TRUSTED_PROXIES", "CORS_ALLOWED_ORIGIN"} {
		t.Setenv(key, "")
	}

	s := loadSecuritySettings()

	assert.False(t, s.hstsEnabled)
	assert.Equal(t, "max-age=31536000; includeSubDomains", s.hstsValue)
	assert.Equal(t, defaultMaxBodyBytes, s.maxBodyBytes)
	assert.Nil(t, s.trustedProxies)
	assert.False(t, s.originAllowed("https://stackos.io"))
}
