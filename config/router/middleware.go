package router

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackos/landing/internal/log"
)

const browserRateLimitMessage = "Too many attempts. Please wait a minute and try again."

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Correlation-ID")
		if id == "" {
			id = log.GenerateCorrelationID()
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), log.CorrelatedIDKey, id))
		c.Header("X-Correlation-ID", id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := routerService.logger.WithCorrelationID(c.Request.Context())
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), log.LoggerKeyForContext, logger))
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		GetLogger(c).Info("HTTP request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	settings := routerService.security

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		if settings.hstsEnabled && secureRequest(c) {
			h.Set("Strict-Transport-Security", settings.hstsValue)
		}
		c.Next()
	}
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	maxBytes := routerService.security.maxBodyBytes

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			routerService.abortWithError(c, ErrorResult(http.StatusRequestEntityTooLarge, "Request payload too large", nil))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// corsMiddleware only answers for origins in CORS_ALLOWED_ORIGIN. Other origins
// get no CORS headers and the browser blocks the response.
func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	settings := routerService.security

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if !settings.originAllowed(origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Correlation-ID")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// timeoutMiddleware bounds the request context. Handlers run on the request
// goroutine; a handler that overran without writing gets a 408.
func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), routerService.requestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			routerService.logger.WithCorrelationID(ctx).Warn("Request timed out", "path", c.Request.URL.Path)
			routerService.abortWithError(c, ErrorResult(http.StatusRequestTimeout, "Request timeout", nil))
		}
	}
}

// rateLimitMiddleware counts requests per client IP. A limiter error lets the
// request through.
func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter, ok := routerService.routes.limiterFor(c, routerService.rateLimiter)
		if !ok {
			routerService.abortWithError(c, NotFoundResult("Page not found"))
			return
		}

		clientIP := c.ClientIP()
		limit, window := limiter.GetLimitDetails()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Window", window.String())

		limited, err := limiter.IsLimited(c.Request.Context(), "ratelimit:"+clientIP)
		if err != nil {
			routerService.logger.Warn("Rate limiter unavailable, allowing request", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}
		if !limited {
			c.Next()
			return
		}

		retryAfter := strconv.Itoa(max(1, int(math.Ceil(window.Seconds()))))
		c.Header("Retry-After", retryAfter)
		routerService.logger.Warn("Rate limit exceeded", "client_ip", clientIP, "route", c.FullPath())

		result := TooManyRequestsResult(RateLimitResponse{
			Limit:      limit,
			Window:     window.String(),
			RetryAfter: retryAfter,
		})
		if routerService.htmlEnabled && WantsHTML(c) {
			result.Message = browserRateLimitMessage
		}
		routerService.abortWithError(c, result)
	}
}
