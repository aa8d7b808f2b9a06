// Package errors defines the sentinel errors shared across the search core
// and an AppError wrapper that carries an HTTP status code.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrIndexNotReady signals that no artifact has been loaded yet. It is a
	// recoverable condition: callers should treat it as "loading", not as a
	// failure.
	ErrIndexNotReady = errors.New("search index not ready")
	// ErrArtifactCorrupt signals that an artifact file failed validation
	// (undecodable envelope, unsupported format version, or doc-count and
	// stats disagreement).
	ErrArtifactCorrupt = errors.New("search index artifact corrupt")
	// ErrInvalidDocument signals a corpus document missing a required field.
	ErrInvalidDocument = errors.New("invalid document")
	ErrEmptyCorpus     = errors.New("corpus is empty")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
)

// AppError wraps a sentinel error with a message and an HTTP status code.
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

// New builds an AppError around a sentinel.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf builds an AppError with a formatted message.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the status code the HTTP layer should
// return for it.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
