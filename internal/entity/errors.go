package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrShortCodeExists is returned by a store when the short code is already claimed.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrShortCodeTaken is returned when a user supplied custom code is already in use.
	ErrShortCodeTaken = errors.New("short code already taken")
	// ErrCodeExhausted is returned when no free short code was found within the retry budget.
	ErrCodeExhausted = errors.New("short code generation attempts exhausted")
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrURLExpired is returned when the URL exists but its expiration moment has passed.
	ErrURLExpired = errors.New("url expired")
	// ErrStoreUnavailable wraps I/O failures of the persistent store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError describes malformed input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError returns a *ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
