package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// DatabaseMessages carries the user-facing message for each class of storage failure.
// Empty fields fall back to Default.
type DatabaseMessages struct {
	Conflict    string
	Unavailable string
	Invalid     string
	Default     string
}

// ClassifyDatabaseError turns a driver or gorm error into a tagged AppError.
// Classification is structural: gorm's translated sentinels, pgconn error codes and
// context errors. Error text is never inspected. A Postgres error reports the
// server's message; other failures get the matching DatabaseMessages entry.
func ClassifyDatabaseError(err error, messages DatabaseMessages) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	pick := func(msg string) string {
		if msg != "" {
			return msg
		}
		return messages.Default
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewConflictError(pick(messages.Conflict), err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewUnavailableError(pick(messages.Unavailable), err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return NewUnavailableError(pick(messages.Unavailable), err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// The server's own message is shown for every class but a duplicate.
		remote := func(msg string) string {
			if pgErr.Message != "" {
				return pgErr.Message
			}
			return pick(msg)
		}

		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return NewConflictError(pick(messages.Conflict), err)
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsOperatorIntervention(pgErr.Code),
			pgerrcode.IsInsufficientResources(pgErr.Code),
			pgerrcode.IsTransactionRollback(pgErr.Code):
			return NewUnavailableError(remote(messages.Unavailable), err)
		case pgerrcode.IsDataException(pgErr.Code),
			pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return NewInvalidRequestError(remote(messages.Invalid), err)
		default:
			return NewDatabaseError(remote(messages.Default), err)
		}
	}

	if errors.Is(err, gorm.ErrCheckConstraintViolated) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return NewInvalidRequestError(pick(messages.Invalid), err)
	}

	return NewDatabaseError(messages.Default, err)
}
