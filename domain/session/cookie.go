package session

import (
	"net/http"
	"time"

	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/pkg/authprovider"
	"github.com/stackos/landing/pkg/constants"
)

const defaultSessionLifetime = time.Hour

type CookieConfig struct {
	// Secure limits the cookie to HTTPS.
	Secure bool
}

func setSessionCookie(ctx *router.RequestContext, cfg CookieConfig, session *authprovider.Session) {
	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = int(defaultSessionLifetime.Seconds())
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx *router.RequestContext, cfg CookieConfig) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(ctx *router.RequestContext) string {
	token, err := ctx.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}
