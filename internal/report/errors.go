package report

import (
	"errors"
	"fmt"
)

// ErrStateConflict marks operations attempted against a report whose state no
// longer allows them. Callers must treat these as non-retryable.
var ErrStateConflict = errors.New("report state conflict")

// ErrNotFound is returned when a report or item does not exist.
var ErrNotFound = errors.New("report not found")

// ValidationError is a per-field input rejection caught before anything is
// persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
