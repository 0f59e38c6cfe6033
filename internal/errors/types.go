// Package errors carries the categorized error used for user-facing failures.
// Validation errors are shown to the user verbatim; the other categories are
// logged and degraded by the caller.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType categorizes an Error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeStorage
	ErrorTypeAI
	ErrorTypeNotFound
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeValidation:
		return "VALIDATION"
	case ErrorTypeStorage:
		return "STORAGE"
	case ErrorTypeAI:
		return "AI"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Error is a categorized error with an optional context and cause
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Context string    `json:"context,omitempty"`
	Err     error     `json:"-"`
}

// Error implements the error interface. Validation errors render the bare
// message because it is displayed to the user as-is.
func (e *Error) Error() string {
	if e.Type == ErrorTypeValidation {
		return e.Message
	}
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given type
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates an Error of the given type around a cause
func Wrap(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// Validation creates a user-facing validation error
func Validation(message string) *Error {
	return New(ErrorTypeValidation, message)
}

// Validationf creates a user-facing validation error from a format string
func Validationf(format string, args ...any) *Error {
	return New(ErrorTypeValidation, fmt.Sprintf(format, args...))
}

// TypeOf returns the type of the first Error in err's chain
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}
