// Package apperr defines the error taxonomy shared across packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidMode       = errors.New("invalid search mode")
	ErrAuthRequired      = errors.New("embedding credential not configured")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrCorruptStore      = errors.New("index store is corrupt")
)

// ProviderError is returned when the embedding provider rejects or fails a request.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider error (status %d): %s", e.Status, e.Message)
}

// IsProviderError reports whether err wraps a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
