package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups for unknown application/event/posting ids.
// It is reported distinctly from validation failures.
var ErrNotFound = errors.New("not found")

// ValidationError carries a human-readable reason for a rejected input:
// unknown event type, illegal transition, stage regression, duplicate event
// within the suppression window, empty company name. No mutation occurs when
// one is returned; the caller may retry with corrected input.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
