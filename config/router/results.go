package router

import (
	"net/http"

	"github.com/gin-gonic/gin/binding"
	"github.com/stackos/landing/internal/log"
)

// GetLogger returns the request-scoped logger installed by the logger
// middleware. Outside that chain it builds one carrying the correlation ID.
func GetLogger(ctx *RequestContext) *log.Logger {
	if l, ok := ctx.Request.Context().Value(log.LoggerKeyForContext).(*log.Logger); ok && l != nil {
		return l
	}
	return log.NewLoggerWithJSONOutput().WithCorrelationID(ctx.Request.Context())
}

// WantsHTML reports whether the client prefers an HTML document over JSON.
func WantsHTML(ctx *RequestContext) bool {
	return ctx.NegotiateFormat(binding.MIMEJSON, binding.MIMEHTML) == binding.MIMEHTML
}

func jsonResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{StatusCode: statusCode, Message: message, Data: data}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return jsonResult(statusCode, message, data)
}

func OKResult(data any, message string) *ServiceResult {
	return jsonResult(http.StatusOK, message, data)
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return jsonResult(http.StatusBadRequest, message, payload)
}

func NotFoundResult(message string) *ServiceResult {
	return jsonResult(http.StatusNotFound, message, nil)
}

func InternalServerErrorResult(message string) *ServiceResult {
	return jsonResult(http.StatusInternalServerError, message, nil)
}

func TooManyRequestsResult(details RateLimitResponse) *ServiceResult {
	return jsonResult(http.StatusTooManyRequests, "Too Many Requests", details)
}

// PageResult renders template with view as its data.
func PageResult(statusCode int, template string, view any) *ServiceResult {
	return &ServiceResult{StatusCode: statusCode, Template: template, Data: view}
}

// RedirectResult answers with a redirect. Use 303 after a form POST.
func RedirectResult(statusCode int, location string) *ServiceResult {
	return &ServiceResult{StatusCode: statusCode, Location: location}
}
