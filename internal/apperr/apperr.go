// Package apperr defines the failure kinds the back office reports to
// clients. Handlers map them to HTTP status codes in one place; anything
// not wrapped in one of these kinds is treated as internal.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrConflict        = errors.New("conflict")
)

// Wrap attaches a client-facing message to a kind. The kind stays
// matchable with errors.Is.
func Wrap(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

func Wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{kind}, args...)...)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
