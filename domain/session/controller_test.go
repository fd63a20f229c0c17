package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/authprovider"
	"github.com/stackos/landing/pkg/constants"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stackos/landing/pkg/ratelimit"
	"github.com/stackos/landing/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testCookies = CookieConfig{Secure: true}

func newTestRouter(t *testing.T) *router.RouterService {
	t.Helper()

	rs := router.CreateRouterService(log.NewLoggerWithJSONOutput(), nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	tmpl, err := web.Templates()
	require.NoError(t, err)
	rs.SetHTMLTemplate(tmpl)
	return rs
}

func newSessionRouter(t *testing.T, service SessionService) http.Handler {
	t.Helper()

	rs := newTestRouter(t)
	limiter := ratelimit.NewInMemoryRateLimiter(1000, time.Minute)
	rs.MountController(NewSessionController(service, limiter, testCookies))
	rs.MountController(NewSessionAPIController(service, limiter, testCookies))
	return rs.Handler()
}

func postLoginForm(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", constants.SessionCookieName)
	return nil
}

func TestLoginPage(t *testing.T) {
	svc := NewMockSessionService(gomock.NewController(t))
	w := httptest.NewRecorder()

	newSessionRouter(t, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?next=%2Fadmin%3Ftab%3Drecent", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="next" value="/admin?tab=recent"`)
}

func TestSubmitLoginForm(t *testing.T) {
	t.Run("success sets the cookie and redirects", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Login(gomock.Any(), "owner@example.com", "hunter2").
			Return(&authprovider.Session{AccessToken: "access-token", ExpiresIn: 3600}, nil)

		w := postLoginForm(newSessionRouter(t, svc), url.Values{
			"email":    {"owner@example.com"},
			"password": {"hunter2"},
			"next":     {"/admin"},
		})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

		cookie := sessionCookie(t, w)
		assert.Equal(t, "access-token", cookie.Value)
		assert.Equal(t, 3600, cookie.MaxAge)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	})

	t.Run("foreign next falls back to the dashboard", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&authprovider.Session{AccessToken: "access-token", ExpiresIn: 3600}, nil)

		w := postLoginForm(newSessionRouter(t, svc), url.Values{
			"email":    {"owner@example.com"},
			"password": {"hunter2"},
			"next":     {"//evil.example/phish"},
		})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, constants.DefaultLoginRedirect, w.Header().Get("Location"))
	})

	t.Run("missing password", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))

		w := postLoginForm(newSessionRouter(t, svc), url.Values{"email": {"owner@example.com"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), MessageCredentialsRequired)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("provider rejection is shown verbatim", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewUnauthorizedError("Email not confirmed", nil))

		w := postLoginForm(newSessionRouter(t, svc), url.Values{
			"email":    {"owner@example.com"},
			"password": {"wrong"},
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Email not confirmed")
		assert.Contains(t, w.Body.String(), `value="owner@example.com"`)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("provider outage", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewUnavailableError(authprovider.UnavailableMessage, nil))

		w := postLoginForm(newSessionRouter(t, svc), url.Values{
			"email":    {"owner@example.com"},
			"password": {"hunter2"},
		})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), authprovider.UnavailableMessage)
	})
}

func TestLoginAPI(t *testing.T) {
	post := func(h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		var env map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &env)
		return w, env
	}

	t.Run("success", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Login(gomock.Any(), "owner@example.com", "hunter2").
			Return(&authprovider.Session{AccessToken: "access-token", ExpiresIn: 600}, nil)

		w, env := post(newSessionRouter(t, svc), `{"email":"owner@example.com","password":"hunter2","next":"/admin"}`)

		require.Equal(t, http.StatusOK, w.Code)
		data := env["data"].(map[string]any)
		assert.Equal(t, "/admin", data["redirect"])
		assert.Equal(t, 600, sessionCookie(t, w).MaxAge)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))

		w, env := post(newSessionRouter(t, svc), `{"email":"owner@example.com"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MessageCredentialsRequired, env["message"])
	})

	t.Run("rejected", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewUnauthorizedError("Invalid login credentials", nil))

		w, env := post(newSessionRouter(t, svc), `{"email":"owner@example.com","password":"nope"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid login credentials", env["message"])
	})
}

func TestLogout(t *testing.T) {
	svc := NewMockSessionService(gomock.NewController(t))
	svc.EXPECT().Logout(gomock.Any(), "access-token").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "access-token"})
	w := httptest.NewRecorder()
	newSessionRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, constants.LoginPath, w.Header().Get("Location"))
	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func newGuardedRouter(t *testing.T, service SessionService) http.Handler {
	t.Helper()

	whoami := func(ctx *router.RequestContext) *router.ServiceResult {
		claims, ok := authprovider.ClaimsFromContext(ctx.Request.Context())
		require.True(t, ok)
		return router.OKResult(claims.Email, "ok")
	}

	rs := newTestRouter(t)
	guard := RequireSession(service, testCookies)
	rs.MountController(router.NewRESTController("Page", "/admin", func(rs *router.RouterService, c *router.RESTController) {
		rs.AddGetHandler(c, nil, "", whoami, guard)
	}))
	rs.MountController(router.NewVersionedRESTController("API", "v1", "/admin", func(rs *router.RouterService, c *router.RESTController) {
		rs.AddGetHandler(c, nil, "dashboard", whoami, guard)
	}))
	return rs.Handler()
}

func TestRequireSession(t *testing.T) {
	get := func(h http.Handler, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept", "text/html")
		if token != "" {
			req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	t.Run("valid session reaches the handler", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Authenticate(gomock.Any(), "good").Return(&authprovider.Claims{Email: "owner@example.com"}, nil)

		w := get(newGuardedRouter(t, svc), "/admin", "good")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "owner@example.com")
	})

	t.Run("page without session redirects to login", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Authenticate(gomock.Any(), "").Return(nil, apperrors.NewUnauthorizedError(MessageSignInRequired, nil))

		w := get(newGuardedRouter(t, svc), "/admin", "")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login?next=%2Fadmin", w.Header().Get("Location"))
	})

	t.Run("rejected cookie is cleared", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Authenticate(gomock.Any(), "stale").Return(nil, apperrors.NewUnauthorizedError(MessageSignInRequired, nil))

		w := get(newGuardedRouter(t, svc), "/admin", "stale")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Negative(t, sessionCookie(t, w).MaxAge)
	})

	t.Run("API without session is 401 JSON", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Authenticate(gomock.Any(), "").Return(nil, apperrors.NewUnauthorizedError(MessageSignInRequired, nil))

		w := get(newGuardedRouter(t, svc), "/v1/admin/dashboard", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var env map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, MessageSignInRequired, env["message"])
	})

	t.Run("account outside the allowlist is forbidden", func(t *testing.T) {
		svc := NewMockSessionService(gomock.NewController(t))
		svc.EXPECT().Authenticate(gomock.Any(), "other").Return(nil, apperrors.NewForbiddenError(MessageNotAllowed, nil))

		w := get(newGuardedRouter(t, svc), "/admin", "other")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), MessageNotAllowed)
	})
}
