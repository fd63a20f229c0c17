package session

import (
	"net/url"
	"strings"

	"github.com/stackos/landing/pkg/constants"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
	Next     string `json:"next" form:"next"`
}

type LoginResponse struct {
	Redirect  string `json:"redirect"`
	ExpiresIn int    `json:"expires_in"`
}

// SafeNext keeps post-login redirects on this site. Anything that is not a
// plain local path falls back to the dashboard.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return constants.DefaultLoginRedirect
	}

	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return constants.DefaultLoginRedirect
	}
	return next
}
