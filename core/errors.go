package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is returned when a requested resource does not exist.
type NotFoundError struct{ msg string }

func NewNotFoundError(msg string) error { return &NotFoundError{msg: msg} }

func (err NotFoundError) Error() string { return err.msg }

// ConflictError is returned when a write collides with existing state.
type ConflictError struct{ msg string }

func NewConflictError(msg string) error { return &ConflictError{msg: msg} }

func (err ConflictError) Error() string { return err.msg }

// PermissionError is returned when an operation is not allowed for the caller.
type PermissionError struct{ msg string }

func NewPermissionError(msg string) error { return &PermissionError{msg: msg} }

func (err PermissionError) Error() string { return err.msg }

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
