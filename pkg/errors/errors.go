// Package errors defines the sentinel errors shared by the loaders, the solver
// and the HTTP layer, plus AppError for attaching an HTTP status to a failure.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// StatusClientClosedRequest is reported when the caller went away before a
// response was ready.
const StatusClientClosedRequest = 499

var (
	ErrMissingInput    = errors.New("input not found")
	ErrMalformedPuzzle = errors.New("malformed puzzle")
	ErrGridOverflow    = errors.New("too many characters for grid")
	ErrIncompleteGrid  = errors.New("puzzle dimensions incorrect")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrTimeout         = errors.New("operation timed out")
	ErrInternal        = errors.New("internal error")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps err onto a response status. An AppError's own status
// wins over the sentinel mapping.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrMalformedPuzzle),
		errors.Is(err, ErrGridOverflow),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrIncompleteGrid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
