package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller input rejected before scoring.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamGenerator marks a narrative generator that failed, timed out
	// or returned content that could not be used.
	ErrUpstreamGenerator = errors.New("narrative generator failed")
	// ErrMissingReasons is returned when the generator produced fewer usable
	// reasons than there are ranked tasks.
	ErrMissingReasons = errors.New("narrative generator returned too few reasons")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
