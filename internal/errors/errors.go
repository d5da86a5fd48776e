package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Forward error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrVisionLocked    ErrorCode = "VISION_LOCKED"    // 409
	ErrConfirmRequired ErrorCode = "CONFIRM_REQUIRED" // 409 (destructive op without explicit confirmation)
	ErrConflict        ErrorCode = "CONFLICT"         // 409
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// ForwardError represents a structured error with code, status, and details.
type ForwardError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ForwardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ForwardError {
	return &ForwardError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing item or project.
func NewNotFound(kind, id string) *ForwardError {
	return &ForwardError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewVisionLocked creates a 409 error for edits to a locked project vision.
func NewVisionLocked(projectID string) *ForwardError {
	return &ForwardError{
		Code:    ErrVisionLocked,
		Status:  409,
		Message: "vision is locked and can no longer be edited",
		Details: map[string]any{"project_id": projectID},
	}
}

// NewConfirmRequired creates a 409 error for destructive operations
// invoked without the explicit confirmation flag.
func NewConfirmRequired(msg string) *ForwardError {
	return &ForwardError{
		Code:    ErrConfirmRequired,
		Status:  409,
		Message: msg,
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *ForwardError {
	return &ForwardError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is kept generic; the original error goes into Details
// so callers can log it without leaking it to clients.
func NewInternal(err error) *ForwardError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &ForwardError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (possibly wrapped) is a ForwardError with the given code.
func Is(err error, code ErrorCode) bool {
	var fErr *ForwardError
	if stderrors.As(err, &fErr) {
		return fErr.Code == code
	}
	return false
}
