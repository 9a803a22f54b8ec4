package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a daybrief error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrBusy              ErrorCode = "BUSY"               // 409
	ErrInternal          ErrorCode = "INTERNAL"           // 500
	ErrRemoteUnavailable ErrorCode = "REMOTE_UNAVAILABLE" // 502
)

// DaybriefError represents a structured error with code, status, and details.
type DaybriefError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// cause is kept for logging; it never reaches a rendered response.
	cause error
}

// Error implements the error interface.
func (e *DaybriefError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *DaybriefError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *DaybriefError {
	return &DaybriefError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(what string) *DaybriefError {
	return &DaybriefError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", what),
		Details: map[string]any{"identifier": what},
	}
}

// NewBusy creates a 409 error for a chat panel that already has a request in flight.
func NewBusy(panel string) *DaybriefError {
	return &DaybriefError{
		Code:    ErrBusy,
		Status:  409,
		Message: fmt.Sprintf("panel %q is awaiting a reply", panel),
		Details: map[string]any{"panel": panel},
	}
}

// NewRemoteUnavailable creates a 502 error for a failed backend call.
// The cause is retained for logs but the message stays generic.
func NewRemoteUnavailable(op string, cause error) *DaybriefError {
	return &DaybriefError{
		Code:    ErrRemoteUnavailable,
		Status:  502,
		Message: "remote service unavailable",
		Details: map[string]any{"operation": op},
		cause:   cause,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *DaybriefError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &DaybriefError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if err (or anything it wraps) is a DaybriefError with the given code.
func Is(err error, code ErrorCode) bool {
	var dErr *DaybriefError
	if stderrors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// As extracts a DaybriefError from err, wrapping anything else as INTERNAL.
func As(err error) *DaybriefError {
	var dErr *DaybriefError
	if stderrors.As(err, &dErr) {
		return dErr
	}
	return NewInternal(err)
}
