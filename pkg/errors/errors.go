// Package errors provides the unified error type and factory functions for
// the competiscope service.  Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the single carrier for structured error
// information, enabling consistent HTTP responses, logging, and metrics.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the single structured error type used throughout the service.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.NotFound("snapshot not computed yet")
//	return errors.Wrap(err, errors.CodeBackendError, "comparison fetch failed")
type AppError struct {
	// Code is the typed error code identifying the failure category.
	Code ErrorCode

	// Message is the primary human-readable description, suitable for
	// inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (subject keys, cursors, etc.)
	// that aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error, enabling errors.Is / errors.As
	// traversal of the full chain.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// Safe to call on a nil pointer.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an AppError that wraps an existing error.  If err is nil,
// Wrap returns nil so it can be used inline.  When err is already an
// *AppError and code is CodeUnknown the original code is preserved, so that
// cross-layer propagation does not lose the original classification.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether any error in err's chain carries a not-found
// code.  Callers treat not-found as "no data yet", never as a failure banner.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case CodeNotFound, CodeSnapshotNotComputed, CodePresetNotFound:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsValidation reports whether err's chain carries a validation code.
func IsValidation(err error) bool {
	return IsCode(err, CodeValidation) || IsCode(err, CodeInvalidParam)
}

// IsConflict reports whether err's chain carries a conflict code.
func IsConflict(err error) bool {
	return IsCode(err, CodeConflict) || IsCode(err, CodeSubjectExists)
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain, or CodeUnknown when none is present.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message}
}

// Validation constructs a CodeValidation AppError, used when the backend
// rejects a malformed request; the message is surfaced verbatim.
func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// Internal constructs a CodeInternal AppError.  Use for unexpected failures
// where no more specific code applies; always log the underlying cause.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message}
}

// Conflict constructs a CodeConflict AppError.
func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// Unavailable constructs a CodeNetworkFailure AppError for timeouts and
// connection-level failures against the analytics backend.
func Unavailable(message string) *AppError {
	return &AppError{Code: CodeNetworkFailure, Message: message}
}

// Partial constructs a CodePartialFailure AppError, used when some of
// several concurrent sub-fetches failed while others succeeded.
func Partial(message string) *AppError {
	return &AppError{Code: CodePartialFailure, Message: message}
}
