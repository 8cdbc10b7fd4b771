// Package errors defines the sentinel errors shared across the engine and an
// AppError wrapper that carries an HTTP status code for the search service.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrCorpusUnreadable = errors.New("corpus unreadable")
	ErrSnapshotInvalid  = errors.New("index snapshot invalid")
	ErrSynonymsInvalid  = errors.New("synonym table invalid")
	ErrEmptyIndex       = errors.New("index contains no documents")
	ErrFetchDenied      = errors.New("fetch denied by robots.txt")
	ErrTimeout          = errors.New("operation timed out")
	ErrInternal         = errors.New("internal error")
)

// AppError attaches a client-facing message and an HTTP status to a
// sentinel error. The search handler writes Message to the response body
// and keeps the wrapped error for the log.
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

// New wraps a sentinel error with a status code and message.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status the search service should
// respond with. A context deadline counts as a timeout.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrEmptyIndex):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
