package cli

import (
	stderrors "errors"
	"fmt"

	"timesheet/internal/errors"
	"timesheet/internal/logging"
	"timesheet/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle prefixes err with the failed operation and replaces internal
// detail with the message meant for users.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	eh.log(operation, err)
	if msg, ok := userMessage(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, msg)
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// HandleSimple is Handle without the operation prefix. Errors the
// application did not create are returned unchanged.
func (eh *ErrorHandler) HandleSimple(err error) error {
	if err == nil {
		return nil
	}
	eh.log("", err)
	if msg, ok := userMessage(err); ok {
		return stderrors.New(msg)
	}
	return err
}

// log records the full error, cause included, for failures the user did not cause.
func (eh *ErrorHandler) log(operation string, err error) {
	if !errors.ShouldLogError(err) || validation.IsValidationError(err) {
		return
	}
	logging.Debugf("cli: %s failed [%s]: %v\n", operation, errors.GetErrorCode(err), err)
}

// userMessage reports the display text for errors the application created.
func userMessage(err error) (string, bool) {
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		return ve.GetUserFriendlyMessage(), true
	}
	if _, ok := errors.AsAppError(err); ok {
		return errors.GetUserMessage(err), true
	}
	return "", false
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsConflictError reports whether err came from a stale revision, which a
// refresh and retry can resolve.
func (eh *ErrorHandler) IsConflictError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeConflict)
}

// IsTransitionError reports whether err rejected an operation for the timer's current state.
func (eh *ErrorHandler) IsTransitionError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeInvalidTransition)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}
