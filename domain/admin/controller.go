package admin

import (
	"net/http"

	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/pkg/authprovider"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stackos/landing/web"
)

// NewAdminController serves the dashboard page. requireSession guards every handler.
func NewAdminController(service AdminService, requireSession router.MiddlewareFunc) *router.RESTController {
	return router.NewRESTController(
		"AdminController",
		"/admin",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "", dashboardPageHandler(service), requireSession)
		},
	)
}

func NewAdminAPIController(service AdminService, requireSession router.MiddlewareFunc) *router.RESTController {
	return router.NewVersionedRESTController(
		"AdminAPIController",
		"v1",
		"/admin",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "dashboard", dashboardHandler(service), requireSession)
		},
	)
}

func dashboardPageHandler(service AdminService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		ctx.Header("Cache-Control", "no-store")

		dashboard, err := service.Dashboard(ctx.Request.Context())
		if err != nil {
			return router.PageResult(http.StatusInternalServerError, web.ErrorTemplate, router.ErrorPage{
				StatusCode: http.StatusInternalServerError,
				Title:      http.StatusText(http.StatusInternalServerError),
				Message:    apperrors.GetHumanReadableMessage(err),
			})
		}

		var userEmail string
		if claims, ok := authprovider.ClaimsFromContext(ctx.Request.Context()); ok {
			userEmail = claims.Email
		}

		return router.PageResult(http.StatusOK, web.AdminTemplate, ToAdminPage(dashboard, userEmail))
	}
}

func dashboardHandler(service AdminService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		ctx.Header("Cache-Control", "no-store")

		dashboard, err := service.Dashboard(ctx.Request.Context())
		if err != nil {
			return router.ErrorResult(apperrors.HTTPStatusCode(err), apperrors.GetHumanReadableMessage(err), nil)
		}

		return router.OKResult(ToDashboardResponse(dashboard), "Dashboard loaded")
	}
}
