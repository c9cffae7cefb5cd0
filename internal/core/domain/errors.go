// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced across the service boundary. Storage failures are
// wrapped opaquely with %w instead of getting their own sentinel.
var (
	// ErrNotFound is returned when a card record is absent on read, update
	// or delete.
	ErrNotFound = errors.New("card record not found")

	// ErrCatalogUnavailable is returned when the external catalog source is
	// unreachable, times out, or returns no data for the card.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrUnknownOperation is returned for a batch item whose kind is not
	// recognized.
	ErrUnknownOperation = errors.New("unknown batch operation")
)

// ValidationError reports a malformed or unauthorized finish/quantity change.
// Field names the offending input so the caller can correct it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewUnknownFinishError builds the validation error for a finish the catalog
// does not allow for this card.
func NewUnknownFinishError(finish string) *ValidationError {
	return &ValidationError{
		Field:  finish,
		Reason: fmt.Sprintf("finish %q is not valid for this card", finish),
	}
}

// NewInvalidQuantityError builds the validation error for a rejected amount.
func NewInvalidQuantityError(finish string, amount int) *ValidationError {
	return &ValidationError{
		Field:  finish,
		Reason: fmt.Sprintf("invalid quantity %d for finish %q", amount, finish),
	}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
