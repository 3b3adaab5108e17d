// Package errors provides typed error definitions for traefiker.
// Every failure that crosses the orchestrator boundary is a TraefikerError
// so transports can classify it without string matching.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique identifier for different error types
type ErrorCode string

const (
	// Configuration errors
	ErrConfigParse      ErrorCode = "CONFIG_PARSE"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Service errors
	ErrServiceNotFound ErrorCode = "SERVICE_NOT_FOUND"
	ErrServiceConflict ErrorCode = "SERVICE_CONFLICT"
	ErrServiceExists   ErrorCode = "SERVICE_EXISTS"

	// Project errors
	ErrProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	ErrProjectExists   ErrorCode = "PROJECT_EXISTS"

	// Runtime errors
	ErrRuntime              ErrorCode = "RUNTIME_FAILURE"
	ErrRuntimeUnavailable   ErrorCode = "RUNTIME_UNAVAILABLE"
	ErrContainerNotAttached ErrorCode = "CONTAINER_NOT_ATTACHED"

	// Database errors
	ErrDatabaseConnection ErrorCode = "DATABASE_CONNECTION"
	ErrDatabaseMigration  ErrorCode = "DATABASE_MIGRATION"

	// Network/API errors
	ErrNetworkConnection ErrorCode = "NETWORK_CONNECTION"
	ErrAPICall           ErrorCode = "API_CALL"

	// Validation errors
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Internal errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrTimeout      ErrorCode = "TIMEOUT"
	ErrShuttingDown ErrorCode = "SHUTTING_DOWN"
)

// TraefikerError represents a structured error with additional context
type TraefikerError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *TraefikerError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *TraefikerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TraefikerError) WithContext(key string, value interface{}) *TraefikerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause adds the underlying cause error
func (e *TraefikerError) WithCause(cause error) *TraefikerError {
	e.Cause = cause
	return e
}

// GetHTTPStatus returns the appropriate HTTP status code for this error
func (e *TraefikerError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}

	switch e.Code {
	case ErrServiceNotFound, ErrProjectNotFound:
		return http.StatusNotFound
	case ErrInvalidRequest, ErrValidationFailed, ErrConfigValidation:
		return http.StatusBadRequest
	case ErrServiceConflict, ErrServiceExists, ErrProjectExists, ErrContainerNotAttached:
		return http.StatusConflict
	case ErrRuntime, ErrRuntimeUnavailable:
		return http.StatusBadGateway
	case ErrTimeout:
		return http.StatusGatewayTimeout
	case ErrShuttingDown:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new TraefikerError
func New(code ErrorCode, message string) *TraefikerError {
	return &TraefikerError{
		Code:    code,
		Message: message,
	}
}

// NewWithDetails creates a new TraefikerError with details
func NewWithDetails(code ErrorCode, message, details string) *TraefikerError {
	return &TraefikerError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Wrap creates a new TraefikerError that wraps an existing error
func Wrap(code ErrorCode, message string, cause error) *TraefikerError {
	return &TraefikerError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetails creates a new TraefikerError with details that wraps an existing error
func WrapWithDetails(code ErrorCode, message, details string, cause error) *TraefikerError {
	return &TraefikerError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// As extracts the first TraefikerError in err's chain.
func As(err error) (*TraefikerError, bool) {
	var te *TraefikerError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsTraefikerError checks if an error is, or wraps, a TraefikerError
func IsTraefikerError(err error) bool {
	_, ok := As(err)
	return ok
}

// GetCode extracts the error code from an error, if it carries one
func GetCode(err error) ErrorCode {
	if te, ok := As(err); ok {
		return te.Code
	}
	return ""
}

// HasCode checks if an error has a specific error code
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsNotFound reports whether err denotes a missing service or project.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrServiceNotFound, ErrProjectNotFound:
		return true
	}
	return false
}

// IsConflict reports whether err denotes a state or uniqueness conflict.
func IsConflict(err error) bool {
	switch GetCode(err) {
	case ErrServiceConflict, ErrServiceExists, ErrProjectExists, ErrContainerNotAttached:
		return true
	}
	return false
}

// IsInvalidRequest reports whether err denotes a malformed caller request.
func IsInvalidRequest(err error) bool {
	switch GetCode(err) {
	case ErrInvalidRequest, ErrValidationFailed:
		return true
	}
	return false
}
