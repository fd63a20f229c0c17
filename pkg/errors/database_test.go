package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

var testMessages = DatabaseMessages{
	Conflict:    "already exists",
	Unavailable: "try again later",
	Invalid:     "bad data",
	Default:     "unable to save",
}

func TestClassifyDatabaseError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantType    string
		wantMessage string
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, ErrorTypeConflict, "already exists"},
		{"wrapped gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), ErrorTypeConflict, "already exists"},
		{"postgres unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, ErrorTypeConflict, "already exists"},
		{"postgres admin shutdown", &pgconn.PgError{Code: pgerrcode.AdminShutdown}, ErrorTypeUnavailable, "try again later"},
		{"postgres connection failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, ErrorTypeUnavailable, "try again later"},
		{"postgres serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, ErrorTypeUnavailable, "try again later"},
		{"postgres value too long", &pgconn.PgError{Code: pgerrcode.StringDataRightTruncationDataException}, ErrorTypeInvalidRequest, "bad data"},
		{"postgres not null violation", &pgconn.PgError{Code: pgerrcode.NotNullViolation}, ErrorTypeInvalidRequest, "bad data"},
		{"context deadline", context.DeadlineExceeded, ErrorTypeUnavailable, "try again later"},
		{"context canceled", fmt.Errorf("query: %w", context.Canceled), ErrorTypeUnavailable, "try again later"},
		{"check constraint", gorm.ErrCheckConstraintViolated, ErrorTypeInvalidRequest, "bad data"},
		{"unknown error", errors.New("duplicate something"), ErrorTypeDatabaseError, "unable to save"},
		{"unknown postgres code", &pgconn.PgError{Code: pgerrcode.SyntaxError}, ErrorTypeDatabaseError, "unable to save"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ClassifyDatabaseError(tt.err, testMessages)

			assert.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantMessage, appErr.Message)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}

func TestClassifyDatabaseError_TextIsIgnored(t *testing.T) {
	// A message that merely mentions "duplicate" is not a conflict.
	appErr := ClassifyDatabaseError(errors.New(`ERROR: duplicate key value violates unique constraint`), testMessages)

	assert.False(t, IsConflict(appErr))
}

func TestClassifyDatabaseError_KeepsExistingAppError(t *testing.T) {
	original := NewNotFoundError("missing", nil)

	assert.Same(t, original, ClassifyDatabaseError(fmt.Errorf("wrapped: %w", original), testMessages))
}

func TestClassifyDatabaseError_EmptyMessagesFallBackToDefault(t *testing.T) {
	appErr := ClassifyDatabaseError(gorm.ErrDuplicatedKey, DatabaseMessages{Default: "fallback"})

	assert.Equal(t, ErrorTypeConflict, appErr.Type)
	assert.Equal(t, "fallback", appErr.Message)
}

func TestClassifyDatabaseError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyDatabaseError(nil, testMessages))
}

func TestHTTPStatusCode_Unavailable(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatusCode(NewUnavailableError("down", nil)))
	assert.Equal(t, http.StatusConflict, HTTPStatusCode(NewConflictError("dup", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusCode(errors.New("plain")))
}

func TestClassifyDatabaseError_ServerMessageIsKept(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantType string
	}{
		{"connection failure", pgerrcode.ConnectionFailure, ErrorTypeUnavailable},
		{"internal error", pgerrcode.InternalError, ErrorTypeDatabaseError},
		{"check violation", pgerrcode.CheckViolation, ErrorTypeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ClassifyDatabaseError(&pgconn.PgError{Code: tt.code, Message: "network error"}, testMessages)

			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, "network error", appErr.Message)
			assert.Equal(t, "network error", GetHumanReadableMessage(appErr))
		})
	}
}

func TestClassifyDatabaseError_DuplicateIgnoresServerMessage(t *testing.T) {
	appErr := ClassifyDatabaseError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, Message: "duplicate key value"}, testMessages)

	assert.True(t, IsConflict(appErr))
	assert.Equal(t, "already exists", appErr.Message)
}
