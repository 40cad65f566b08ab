// Package validation checks user input locally before anything is sent to
// the backend: password strength, the registration form and the contact form.
package validation

import (
	"errors"
	"strings"
)

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid input")

// FieldError is one failed rule on one field.
type FieldError struct {
	// Field is the JSON name of the field, e.g. "email".
	Field string

	// Message is the user-facing text, shown as is.
	Message string
}

// ValidationError collects every failed rule of one form.
type ValidationError struct {
	Errors []FieldError
}

// Error joins the messages with newlines, in the order the rules ran.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "\n")
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrInvalid).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Field returns the messages recorded for field.
func (e *ValidationError) Field(field string) []string {
	var out []string
	for _, fe := range e.Errors {
		if fe.Field == field {
			out = append(out, fe.Message)
		}
	}
	return out
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
