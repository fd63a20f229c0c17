package router

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"time"

	"filippo.io/csrf"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/ratelimit"
	"github.com/stackos/landing/pkg/utils"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// DefaultTimeoutDuration bounds a request when RouterConfig leaves it unset.
const DefaultTimeoutDuration = 30 * time.Second

type Cache interface {
	Ping(ctx context.Context) error
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RouterService struct {
	engine          *gin.Engine
	server          *http.Server
	logger          *log.Logger
	security        securitySettings
	requestTimeout  time.Duration
	rateLimiter     ratelimit.RateLimiter
	csrfProtection  *csrf.Protection
	metricsRegistry *prometheus.Registry
	htmlEnabled     bool
	routes          *routeTable
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
	// TrustedOrigins may submit cross-origin form posts, e.g. "https://stackos.io".
	TrustedOrigins []string
}

// CreateRouterService builds the gin engine with the full middleware chain.
// Routes are added later through MountController.
func CreateRouterService(logger *log.Logger, cache Cache, routerConfig *RouterConfig) *RouterService {
	if mode, ok := os.LookupEnv("GIN_MODE"); ok && mode != "" {
		gin.SetMode(mode)
	}

	timeout := routerConfig.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeoutDuration
	}

	rs := &RouterService{
		engine:         gin.New(),
		logger:         logger,
		security:       loadSecuritySettings(),
		requestTimeout: timeout,
		routes:         newRouteTable(),
	}

	rs.engine.Use(gin.Recovery())
	if utils.IsTracingEnabled() {
		rs.engine.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	// ClientIP() keys the rate limiters, so X-Forwarded-For is only honoured from
	// proxies listed in TRUSTED_PROXIES.
	if err := rs.engine.SetTrustedProxies(rs.security.trustedProxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = rs.engine.SetTrustedProxies(nil)
	}

	rs.rateLimiter = newDefaultLimiter(logger, cache, routerConfig.RateLimitRequests, routerConfig.RateLimitWindow)
	rs.csrfProtection = newCrossOriginProtection(logger, routerConfig.TrustedOrigins)
	rs.mountMetrics()

	rs.engine.Use(
		rs.securityHeadersMiddleware(),
		rs.maxBodySizeMiddleware(),
		rs.corsMiddleware(),
		rs.rateLimitMiddleware(),
		rs.timeoutMiddleware(),
		rs.correlationIDMiddleware(),
		rs.loggerInjectionMiddleware(),
		rs.requestLoggingMiddleware(),
	)

	rs.engine.HandleMethodNotAllowed = true
	rs.engine.RedirectTrailingSlash = true
	rs.engine.NoRoute(func(c *gin.Context) {
		rs.abortWithError(c, ErrorResult(http.StatusNotFound, "Page not found", nil))
	})
	rs.engine.NoMethod(func(c *gin.Context) {
		rs.abortWithError(c, ErrorResult(http.StatusMethodNotAllowed, "Method not allowed", nil))
	})

	// Gin's Context is not goroutine-safe, so mid-flight time limits come from the server.
	rs.server = &http.Server{
		Handler:           rs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized", "request_timeout", timeout)
	return rs
}

// newDefaultLimiter is the limiter for routes without a policy of their own.
// It uses Redis when the cache exposes a reachable client.
func newDefaultLimiter(logger *log.Logger, cache Cache, requests int, window time.Duration) ratelimit.RateLimiter {
	var client *redis.Client
	if provider, ok := cache.(RedisClientProvider); ok {
		client = provider.GetClient()
	}

	if client != nil {
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable for rate limiting, using in-memory limiter", "error", err)
			client = nil
		}
	}

	logger.Info("Default rate limiter ready", "requests", requests, "window", window, "redis", client != nil)
	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests: requests,
		Window:   window,
		Redis:    client,
		Logger:   logger,
	})
}

func newCrossOriginProtection(logger *log.Logger, trustedOrigins []string) *csrf.Protection {
	protection := csrf.New()
	for _, origin := range trustedOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			logger.Error("Ignoring invalid trusted origin", "origin", origin, "error", err)
			continue
		}
		logger.Info("Trusted origin added", "origin", origin)
	}
	return protection
}

// Handler is the engine wrapped with cross-origin request protection.
// Non-browser clients that send neither Sec-Fetch-Site nor Origin pass through.
func (routerService *RouterService) Handler() http.Handler {
	return routerService.csrfProtection.Handler(routerService.engine)
}

// SetHTMLTemplate enables HTML results. Templates must include "error.html".
func (routerService *RouterService) SetHTMLTemplate(tmpl *template.Template) {
	routerService.engine.SetHTMLTemplate(tmpl)
	routerService.htmlEnabled = tmpl.Lookup("error.html") != nil
}

// ErrorPage is the view model of the shared error page.
type ErrorPage struct {
	StatusCode int
	Title      string
	Message    string
}

// abortWithError writes result as an HTML error page for browsers and as JSON otherwise.
func (routerService *RouterService) abortWithError(c *gin.Context, result *ServiceResult) {
	if routerService.htmlEnabled && WantsHTML(c) {
		c.Abort()
		c.HTML(result.StatusCode, "error.html", ErrorPage{
			StatusCode: result.StatusCode,
			Title:      http.StatusText(result.StatusCode),
			Message:    result.Message,
		})
		return
	}
	c.AbortWithStatusJSON(result.StatusCode, result.ToJSON())
}

// MetricsRegisterer is where domain packages register their collectors.
// When metrics are disabled it returns a registry that is never exposed.
func (routerService *RouterService) MetricsRegisterer() prometheus.Registerer {
	if routerService.metricsRegistry == nil {
		routerService.metricsRegistry = prometheus.NewRegistry()
	}
	return routerService.metricsRegistry
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) Cleanup() {
	if err := routerService.rateLimiter.Close(); err != nil {
		routerService.logger.Error("Failed to close rate limiter", "error", err)
	}
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"path", controller.mountPoint,
		"version", controller.version,
		"handlers", controller.handlerCount,
	)
}

// RunHTTPServer listens on APP_PORT (default 8080) until Shutdown is called.
func (routerService *RouterService) RunHTTPServer() error {
	routerService.server.Addr = ":" + utils.GetEnvTrimmedOrDefault("APP_PORT", "8080")
	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server")
	return routerService.server.Shutdown(ctx)
}
