package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error type for negotiation operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeConflict indicates a compare-and-swap mismatch on a proposal
	// transition: the proposal was already answered or has expired.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeNotFound indicates the requested record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeStoreUnavailable indicates a transient failure reaching the store.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// ErrCodeLLMUnavailable indicates the escalation LLM is not available.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// Error represents a structured error for negotiation operations.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *Error) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

// Invalidf creates an invalid argument error with formatting.
func Invalidf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: ErrCodeConflict, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: msg}
}

// StoreUnavailable creates a store unavailable error.
func StoreUnavailable(msg string, cause error) *Error {
	return &Error{Code: ErrCodeStoreUnavailable, Message: msg, Cause: cause}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string) *Error {
	return &Error{Code: ErrCodeLLMUnavailable, Message: msg}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *Error {
	return &Error{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error (or any error it wraps) is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an *Error.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return defaultCode
}
