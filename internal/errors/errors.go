package errors

import (
	"errors"
	"fmt"
)

// NewValidationError reports input rejected by validation rules.
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, message, cause)
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string, identifier string) *AppError {
	return newError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", resource, identifier), nil,
		"resource", resource, "identifier", identifier)
}

// NewDatabaseError wraps a failed database operation.
func NewDatabaseError(operation string, cause error) *AppError {
	return newError(ErrorTypeDatabase, fmt.Sprintf("database operation failed: %s", operation), cause,
		"operation", operation)
}

// NewInvalidInputError reports a malformed argument.
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return newError(ErrorTypeInvalidInput, fmt.Sprintf("invalid input for %s: %s", field, reason), nil,
		"field", field, "value", value, "reason", reason)
}

// NewTimeoutError reports an operation that ran past its deadline.
func NewTimeoutError(operation string, cause error) *AppError {
	return newError(ErrorTypeTimeout, fmt.Sprintf("operation timed out: %s", operation), cause,
		"operation", operation)
}

// NewInvalidTransitionError reports an operation that the timer's current state does not allow.
func NewInvalidTransitionError(operation string, state string) *AppError {
	return newError(ErrorTypeInvalidTransition, fmt.Sprintf("cannot %s while %s", operation, state), nil,
		"operation", operation, "state", state)
}

// NewRemoteError wraps a failed remote store operation.
func NewRemoteError(operation string, cause error) *AppError {
	return newError(ErrorTypeRemote, fmt.Sprintf("remote operation failed: %s", operation), cause,
		"operation", operation)
}

// NewConflictError reports a write against a document revision that has moved on.
func NewConflictError(resource string, key string, revision int64) *AppError {
	return newError(ErrorTypeConflict,
		fmt.Sprintf("%s %s was modified concurrently (revision %d is stale)", resource, key, revision), nil,
		"resource", resource, "key", key, "revision", revision)
}

// NewStaleOperationError reports a completion whose result no longer applies to local state.
func NewStaleOperationError(operation string, reason string) *AppError {
	return newError(ErrorTypeStaleOperation, fmt.Sprintf("%s: %s", operation, reason), nil,
		"operation", operation, "reason", reason)
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.IsType(errorType)
}

// GetUserMessage returns a message suitable for showing to the user.
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	k, known := kinds[appErr.Type]
	switch {
	case !known:
		return "An unexpected error occurred. Please try again."
	case k.userMessage != "":
		return k.userMessage
	default:
		return appErr.Message
	}
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError reports whether err points at a fault rather than user input.
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return !kinds[appErr.Type].expected
	}
	return true
}
