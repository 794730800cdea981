package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity does not exist in the store.
	ErrNotFound = errors.New("record not found")

	// ErrValidation matches every ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when an application status change
	// is not permitted by the recruitment state machine.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError describes malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IntegrationError wraps a failure from a third-party provider.
// It is logged and recorded for retry, never surfaced to end users.
type IntegrationError struct {
	Provider  string
	Operation string
	Err       error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}
