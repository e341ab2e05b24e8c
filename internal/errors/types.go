// Package errors defines the application's structured error type and the
// taxonomy shared by the store, the tracker and the command line.
package errors

import (
	"fmt"
	"maps"
)

// ErrorType is the category of an AppError.
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeDatabase          ErrorType = "database"
	ErrorTypeInvalidInput      ErrorType = "invalid_input"
	ErrorTypeTimeout           ErrorType = "timeout"
	ErrorTypeInvalidTransition ErrorType = "invalid_transition"
	ErrorTypeRemote            ErrorType = "remote"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeStaleOperation    ErrorType = "stale_operation"
)

// kind describes how each error type is coded and shown to users.
type kind struct {
	code string
	// userMessage replaces the error's own message for display. Empty means
	// the message is already fit for users.
	userMessage string
	// expected errors are caused by user input and are not worth logging.
	expected bool
}

var kinds = map[ErrorType]kind{
	ErrorTypeValidation:        {code: "VALIDATION_FAILED", expected: true},
	ErrorTypeNotFound:          {code: "NOT_FOUND", expected: true},
	ErrorTypeInvalidInput:      {code: "INVALID_INPUT", expected: true},
	ErrorTypeInvalidTransition: {code: "INVALID_TRANSITION", expected: true},
	ErrorTypeStaleOperation:    {code: "STALE_OPERATION"},
	ErrorTypeDatabase:          {code: "DATABASE_ERROR", userMessage: "A database error occurred. Please try again."},
	ErrorTypeTimeout:           {code: "TIMEOUT", userMessage: "The operation timed out. Please try again."},
	ErrorTypeRemote:            {code: "REMOTE_FAILURE", userMessage: "The change could not be saved and has been reverted. Please try again."},
	ErrorTypeConflict:          {code: "REVISION_CONFLICT", userMessage: "The entry was changed elsewhere. Refresh and try again."},
}

// String returns the type name, or "unknown" for an unset type.
func (et ErrorType) String() string {
	if _, ok := kinds[et]; !ok {
		return "unknown"
	}
	return string(et)
}

// AppError is a categorised error with a stable code and structured context.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

// newError builds an AppError of type t. ctx holds alternating keys and values.
func newError(t ErrorType, message string, cause error, ctx ...interface{}) *AppError {
	e := &AppError{
		Type:    t,
		Message: message,
		Code:    kinds[t].code,
		Cause:   cause,
		Context: make(map[string]interface{}, len(ctx)/2),
	}
	for i := 0; i+1 < len(ctx); i += 2 {
		e.Context[fmt.Sprint(ctx[i])] = ctx[i+1]
	}
	return e
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same type and code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Type == t.Type && e.Code == t.Code
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext returns a copy of e with key set in its context.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	c := *e
	c.Context = maps.Clone(e.Context)
	if c.Context == nil {
		c.Context = make(map[string]interface{})
	}
	c.Context[key] = value
	return &c
}

// GetContext retrieves context information from the error
func (e *AppError) GetContext(key string) (interface{}, bool) {
	value, ok := e.Context[key]
	return value, ok
}
