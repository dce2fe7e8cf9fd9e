// Package apperr holds the error kinds shared by the scheduling core.
// Specific errors wrap exactly one kind so callers can branch with errors.Is
// on either the specific error or its kind.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrExternalService = errors.New("external service error")
)

type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// External wraps a collaborator failure so it matches both ErrExternalService
// and the underlying cause.
func External(op string, cause error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrExternalService, cause))
}
