package service

import (
	"errors"
	"strings"

	"github.com/snnyvrz/bookstore-api/internal/validation"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write lost a race with another writer
	// or would orphan dependent records.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries every violation found for one request. It is
// returned instead of a partial result; nothing has been written.
type ValidationError struct {
	Violations []validation.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func invalid(violations ...validation.FieldError) error {
	return &ValidationError{Violations: violations}
}
