package errors

import (
	"errors"
	"net/http"
)

const fallbackMessage = "An unexpected error occurred"

var statusByType = map[string]int{
	ErrorTypeNotFound:            http.StatusNotFound,
	ErrorTypeInvalidRequest:      http.StatusBadRequest,
	ErrorTypeConflict:            http.StatusConflict,
	ErrorTypeUnauthorized:        http.StatusUnauthorized,
	ErrorTypeForbidden:           http.StatusForbidden,
	ErrorTypeTooManyRequests:     http.StatusTooManyRequests,
	ErrorTypeUnavailable:         http.StatusServiceUnavailable,
	ErrorTypeDatabaseError:       http.StatusInternalServerError,
	ErrorTypeInternalServerError: http.StatusInternalServerError,
}

// HTTPStatusCode maps an error to a response status. Untyped errors are 500.
func HTTPStatusCode(err error) int {
	if status, ok := statusByType[GetErrorType(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GetHumanReadableMessage returns the AppError message. Untyped error text is
// never returned because it may carry driver or network details.
func GetHumanReadableMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallbackMessage
}
