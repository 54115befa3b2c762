package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/plx/internal/shared"
)

// ErrorName identifies the kind of a delivered failure.
type ErrorName string

const (
	InvalidValuesError ErrorName = "InvalidValuesError"
	NotFoundError      ErrorName = "NotFoundError"
	UnknownError       ErrorName = "UnknownError"
)

// Error is the failure outcome delivered to an error callback.
type Error struct {
	Name    ErrorName
	Message string
	err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches another *Error with the same Name, so callers can test against [ErrInvalid] and friends.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return te.Name == e.Name && te.Message == ""
	}
	return false
}

var (
	ErrInvalid = &Error{Name: InvalidValuesError}
	ErrMissing = &Error{Name: NotFoundError}
	ErrOther   = &Error{Name: UnknownError}
)

// NewError converts any error into an [*Error], classifying it by the store sentinel it wraps.
func NewError(err error) *Error {
	if err == nil {
		return nil
	}

	var te *Error
	if errors.As(err, &te) {
		return te
	}

	e := &Error{Message: err.Error(), err: err}
	switch {
	case errors.Is(err, shared.ErrInvalidValues):
		e.Name = InvalidValuesError
	case errors.Is(err, shared.ErrNotFound):
		e.Name = NotFoundError
	default:
		e.Name = UnknownError
	}
	return e
}

// Invalid builds an [InvalidValuesError] with a formatted message.
func Invalid(format string, args ...any) *Error {
	return NewError(fmt.Errorf("%w: "+format, append([]any{shared.ErrInvalidValues}, args...)...))
}
