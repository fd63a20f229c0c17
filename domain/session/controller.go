package session

import (
	"net/http"

	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/pkg/constants"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stackos/landing/pkg/ratelimit"
	"github.com/stackos/landing/web"
)

// NewSessionController serves the login form and sign-out.
func NewSessionController(service SessionService, limiter ratelimit.RateLimiter, cookies CookieConfig) *router.RESTController {
	return router.NewRESTController(
		"SessionController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "login", loginPageHandler())
			rs.AddPostHandler(c, limiter, "login", submitLoginFormHandler(service, cookies))
			rs.AddPostHandler(c, nil, "logout", logoutHandler(service, cookies))
		},
	)
}

func NewSessionAPIController(service SessionService, limiter ratelimit.RateLimiter, cookies CookieConfig) *router.RESTController {
	return router.NewVersionedRESTController(
		"SessionAPIController",
		"v1",
		"/auth",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, limiter, "login", loginHandler(service, cookies))
		},
	)
}

func loginPageHandler() router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		ctx.Header("Cache-Control", "no-store")
		return router.PageResult(http.StatusOK, web.LoginTemplate, web.LoginPage{
			Next: SafeNext(ctx.Query("next")),
		})
	}
}

func submitLoginFormHandler(service SessionService, cookies CookieConfig) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		ctx.Header("Cache-Control", "no-store")

		var req LoginRequest
		bindErr := ctx.ShouldBind(&req)
		page := web.LoginPage{Email: req.Email, Next: SafeNext(req.Next)}

		if bindErr != nil {
			page.Error = MessageCredentialsRequired
			return router.PageResult(http.StatusBadRequest, web.LoginTemplate, page)
		}

		session, err := service.Login(ctx.Request.Context(), req.Email, req.Password)
		if err != nil {
			page.Error = apperrors.GetHumanReadableMessage(err)
			return router.PageResult(apperrors.HTTPStatusCode(err), web.LoginTemplate, page)
		}

		setSessionCookie(ctx, cookies, session)
		return router.RedirectResult(http.StatusSeeOther, page.Next)
	}
}

func loginHandler(service SessionService, cookies CookieConfig) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)
		ctx.Header("Cache-Control", "no-store")

		var req LoginRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind login request", "error", err)
			return router.BadRequestResult(MessageCredentialsRequired, apperrors.FormatValidationErrors(err, &req))
		}

		session, err := service.Login(ctx.Request.Context(), req.Email, req.Password)
		if err != nil {
			return router.ErrorResult(apperrors.HTTPStatusCode(err), apperrors.GetHumanReadableMessage(err), nil)
		}

		setSessionCookie(ctx, cookies, session)
		return router.OKResult(LoginResponse{
			Redirect:  SafeNext(req.Next),
			ExpiresIn: session.ExpiresIn,
		}, "Signed in")
	}
}

func logoutHandler(service SessionService, cookies CookieConfig) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)
		ctx.Header("Cache-Control", "no-store")

		if token := sessionToken(ctx); token != "" {
			if err := service.Logout(ctx.Request.Context(), token); err != nil {
				logger.Error("Sign-out could not revoke the session", "error", err)
			}
		}

		clearSessionCookie(ctx, cookies)
		return router.RedirectResult(http.StatusSeeOther, constants.LoginPath)
	}
}
