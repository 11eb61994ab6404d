package planner

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel wrapped by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid plan input")

// InvalidInputError reports a generation parameter that cannot produce a plan.
type InvalidInputError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid plan input: %s %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidInput so callers can match with errors.Is.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}
