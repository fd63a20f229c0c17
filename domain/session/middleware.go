package session

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/pkg/authprovider"
	"github.com/stackos/landing/pkg/constants"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stackos/landing/web"
)

// RequireSession admits requests carrying a valid session cookie and puts the
// claims on the request context. Pages redirect to the login form; /v1 routes
// answer with the JSON envelope.
func RequireSession(service SessionService, cookies CookieConfig) router.MiddlewareFunc {
	return func(c *router.RequestContext) {
		token := sessionToken(c)

		claims, err := service.Authenticate(c.Request.Context(), token)
		if err != nil {
			if token != "" && apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
				clearSessionCookie(c, cookies)
			}
			deny(c, err)
			return
		}

		c.Request = c.Request.WithContext(authprovider.ContextWithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func deny(c *router.RequestContext, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := apperrors.GetHumanReadableMessage(err)
	c.Header("Cache-Control", "no-store")

	if strings.HasPrefix(c.Request.URL.Path, "/v1/") {
		c.AbortWithStatusJSON(status, router.ErrorResult(status, message, nil).ToJSON())
		return
	}

	if status == http.StatusUnauthorized {
		target := constants.LoginPath + "?" + url.Values{"next": {c.Request.URL.RequestURI()}}.Encode()
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
		return
	}

	c.HTML(status, web.ErrorTemplate, router.ErrorPage{
		StatusCode: status,
		Title:      http.StatusText(status),
		Message:    message,
	})
	c.Abort()
}
