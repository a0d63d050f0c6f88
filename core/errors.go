package core

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldError reports a problem with one input field, keyed by its JSON name.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned for bad input. Fields is empty when the problem is not tied to a field.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, "; ")
}

// FieldMap returns the field errors keyed by field, or nil when there are none.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		if _, seen := m[f.Field]; !seen {
			m[f.Field] = f.Error
		}
	}
	return m
}

// ShutdownError asks the running server to stop gracefully.
type ShutdownError string

func NewShutdownError(msg string) error {
	return ShutdownError(msg)
}

func (s ShutdownError) Error() string {
	return string(s)
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(ShutdownError)
	return ok
}
