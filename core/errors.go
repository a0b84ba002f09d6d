package core

import "github.com/pkg/errors"

// FieldError ties a validation failure to the offending struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries user-fixable input errors; the HTTP layer renders
// its Fields as a field->message map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// shutdown signals an unrecoverable integrity problem; the server stops
// instead of serving bad data.
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
