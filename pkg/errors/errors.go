package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error for transport mapping and
// retry decisions.
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation       ErrorType = "VALIDATION"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeConflict         ErrorType = "CONFLICT"
	ErrorTypeCapacityExceeded ErrorType = "CAPACITY_EXCEEDED"
	ErrorTypeUnauthorized     ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden        ErrorType = "FORBIDDEN"

	// Infrastructure errors
	ErrorTypeRepository ErrorType = "REPOSITORY"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// AppError is the error type every service in this codebase returns.
// Conflict means an optimistic write lost its version check after bounded
// retries; CapacityExceeded is a legitimate rejection and is never retried.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds a machine-readable error code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds structured error details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewValidationError creates a validation error (400). Retrying never helps.
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error (404).
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error (409). Surfaced when optimistic
// retries are exhausted; the caller may retry the whole operation.
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewCapacityExceededError creates a capacity exceeded error (409). Unlike
// Conflict this is a final answer, not a transient condition.
func NewCapacityExceededError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeCapacityExceeded,
		Message:    message,
		Code:       "CAPACITY_EXCEEDED",
		HTTPStatus: http.StatusConflict,
	}
}

// NewUnauthorizedError creates an unauthorized error (401).
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error (403). Used for missing or
// insufficient group membership.
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{
		Type:       ErrorTypeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewRepositoryError creates a repository error (500). Fatal to the calling
// operation.
func NewRepositoryError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeRepository,
		Message:    fmt.Sprintf("repository operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewInternalError creates an internal error (500).
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound reports whether the error is a not found error.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation reports whether the error is a validation error.
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflict reports whether the error is an optimistic-lock conflict.
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsCapacityExceeded reports whether the error is a capacity rejection.
func IsCapacityExceeded(err error) bool {
	return IsType(err, ErrorTypeCapacityExceeded)
}

// IsForbidden reports whether the error is a forbidden error.
func IsForbidden(err error) bool {
	return IsType(err, ErrorTypeForbidden)
}

// IsUnauthorized reports whether the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return IsType(err, ErrorTypeUnauthorized)
}

// Wrap wraps an error with additional context, preserving its type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
