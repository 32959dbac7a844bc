package moderation

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an ActionError for callers. Front-ends map these
// to user-facing replies and HTTP status codes.
type ErrorCode string

const (
	// CodeForbidden means the issuer lacks authority for the action.
	CodeForbidden ErrorCode = "forbidden"
	// CodeTargetInvalid means the subject or channel could not be resolved.
	CodeTargetInvalid ErrorCode = "target_invalid"
	// CodeNotFound means a referenced record does not exist.
	CodeNotFound ErrorCode = "not_found"
	// CodeAlreadySanctioned means the sanction is already in place.
	CodeAlreadySanctioned ErrorCode = "already_sanctioned"
	// CodeNotSanctioned means a reversal was attempted on a subject not
	// currently under that sanction.
	CodeNotSanctioned ErrorCode = "not_sanctioned"
	// CodeNotPresent means the subject is not in the required context,
	// e.g. a voice channel.
	CodeNotPresent ErrorCode = "not_present"
	// CodeInvalidDuration means a non-positive or out-of-range time span.
	CodeInvalidDuration ErrorCode = "invalid_duration"
	// CodeInternal means a persistence or platform failure not
	// attributable to caller input.
	CodeInternal ErrorCode = "internal"
)

// ActionError is the engine's error type for failed actions.
type ActionError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// NewActionError creates an ActionError with the given code and message.
func NewActionError(code ErrorCode, message string) *ActionError {
	return &ActionError{Code: code, Message: message}
}

// Internal wraps an unexpected persistence or platform failure.
func Internal(message string, err error) *ActionError {
	return &ActionError{Code: CodeInternal, Message: message, Err: err}
}

// AsActionError extracts an ActionError from an error chain.
// Any other error is treated as internal.
func AsActionError(err error) *ActionError {
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return actionErr
	}

	return &ActionError{Code: CodeInternal, Message: "unexpected error", Err: err}
}

// IsCode reports whether err carries the given ActionError code.
func IsCode(err error, code ErrorCode) bool {
	var actionErr *ActionError
	return errors.As(err, &actionErr) && actionErr.Code == code
}
