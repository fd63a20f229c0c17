package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stackos/landing/pkg/ratelimit"
)

type routeKey struct {
	method string
	path   string
}

// routeTable records which controller owns each route and which limiter guards it.
// It is written while controllers mount and only read once the server runs.
type routeTable struct {
	owners           map[routeKey]*RESTController
	handlerLimits    map[routeKey]ratelimit.RateLimiter
	controllerLimits map[string]ratelimit.RateLimiter
}

func newRouteTable() *routeTable {
	return &routeTable{
		owners:           make(map[routeKey]*RESTController),
		handlerLimits:    make(map[routeKey]ratelimit.RateLimiter),
		controllerLimits: make(map[string]ratelimit.RateLimiter),
	}
}

// claim panics when two handlers register the same method and path.
func (t *routeTable) claim(key routeKey, owner *RESTController, limiter ratelimit.RateLimiter) {
	if previous, taken := t.owners[key]; taken {
		panic(fmt.Sprintf("route %s %s is already registered by controller %q", key.method, key.path, previous.name))
	}
	t.owners[key] = owner

	if limiter != nil {
		t.handlerLimits[key] = limiter
	}
}

func (t *routeTable) limitController(mountPoint string, limiter ratelimit.RateLimiter) {
	if limiter == nil {
		return
	}
	if _, taken := t.controllerLimits[mountPoint]; taken {
		panic(fmt.Sprintf("a rate limiter is already registered for %s", mountPoint))
	}
	t.controllerLimits[mountPoint] = limiter
}

// limiterFor picks the handler limiter, then the controller limiter, then fallback.
// ok is false for requests that matched no registered route.
func (t *routeTable) limiterFor(c *gin.Context, fallback ratelimit.RateLimiter) (ratelimit.RateLimiter, bool) {
	key := routeKey{method: c.Request.Method, path: c.FullPath()}
	owner, ok := t.owners[key]
	if !ok {
		return nil, false
	}

	if limiter, ok := t.handlerLimits[key]; ok {
		return limiter, true
	}
	if limiter, ok := t.controllerLimits[owner.mountPoint]; ok {
		return limiter, true
	}
	return fallback, true
}

// resultWriter turns a handler's ServiceResult into the response.
func resultWriter(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)

		switch {
		case result == nil:
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("Handler returned no result").ToJSON())
		case result.IsRedirect():
			c.Redirect(result.StatusCode, result.Location)
		case result.IsPage():
			c.HTML(result.StatusCode, result.Template, result.Data)
		default:
			c.JSON(result.StatusCode, result.ToJSON())
		}
	}
}
