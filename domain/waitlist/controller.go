package waitlist

import (
	"net/http"

	"github.com/stackos/landing/config/router"
	apperrors "github.com/stackos/landing/pkg/errors"
	"github.com/stackos/landing/pkg/ratelimit"
	"github.com/stackos/landing/web"
)

// NewLandingController serves the landing page and its signup form.
func NewLandingController(service WaitlistService, limiter ratelimit.RateLimiter) *router.RESTController {
	return router.NewRESTController(
		"LandingController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "", landingPageHandler())
			rs.AddPostHandler(c, limiter, "", submitLandingFormHandler(service))
		},
	)
}

// NewWaitlistController exposes the same submission flow as JSON.
func NewWaitlistController(service WaitlistService, limiter ratelimit.RateLimiter) *router.RESTController {
	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, limiter, "", joinWaitlistHandler(service))
		},
	)
}

func landingPageHandler() router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		return router.PageResult(http.StatusOK, web.LandingTemplate, web.LandingPage{Status: web.StatusIdle})
	}
}

func submitLandingFormHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req JoinWaitlistRequest
		if err := ctx.ShouldBind(&req); err != nil {
			logger.Warn("Failed to bind waitlist form", "error", err)
		}

		result, err := service.Join(ctx.Request.Context(), req.Email)
		outcome := outcomeOf(result, err)

		page := web.LandingPage{
			Status:  outcome.Status,
			Message: outcome.Message,
			Email:   req.Email,
		}

		if !outcome.IsSuccess() {
			return router.PageResult(apperrors.HTTPStatusCode(err), web.LandingTemplate, page)
		}

		if !outcome.Duplicate {
			page.Email = ""
		}
		return router.PageResult(http.StatusOK, web.LandingTemplate, page)
	}
}

func joinWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req JoinWaitlistRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)
			return router.BadRequestResult("Invalid request body", JoinWaitlistResponse{Status: StatusError})
		}

		result, err := service.Join(ctx.Request.Context(), req.Email)
		outcome := outcomeOf(result, err)
		response := ToJoinWaitlistResponse(result)

		if !outcome.IsSuccess() {
			return router.ErrorResult(apperrors.HTTPStatusCode(err), outcome.Message, response)
		}

		if outcome.Duplicate {
			return router.OKResult(response, outcome.Message)
		}

		return &router.ServiceResult{
			StatusCode: http.StatusCreated,
			Data:       response,
			Message:    outcome.Message,
		}
	}
}
