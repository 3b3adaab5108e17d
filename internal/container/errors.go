package container

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"traefiker/internal/constants"

	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

// ErrorType represents the type of container error
type ErrorType string

const (
	// ErrorTypeRuntimeNotFound indicates the container runtime is not reachable
	ErrorTypeRuntimeNotFound ErrorType = "runtime_not_found"
	// ErrorTypeContainerNotFound indicates the container was not found
	ErrorTypeContainerNotFound ErrorType = "container_not_found"
	// ErrorTypeImageNotFound indicates the image could not be found or pulled
	ErrorTypeImageNotFound ErrorType = "image_not_found"
	// ErrorTypePermissionDenied indicates the daemon refused the request
	ErrorTypePermissionDenied ErrorType = "permission_denied"
	// ErrorTypeConflict indicates a name or state conflict in the daemon
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeNetworkError indicates a network-related error
	ErrorTypeNetworkError ErrorType = "network_error"
	// ErrorTypeTimeout indicates the call exceeded its deadline
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeUnknown indicates an unknown error
	ErrorTypeUnknown ErrorType = "unknown"
)

// ContainerError represents a detailed container operation error
type ContainerError struct {
	Type        ErrorType
	Operation   string
	ContainerID string
	Message     string
	Underlying  error
}

// Error implements the error interface
func (e *ContainerError) Error() string {
	parts := []string{e.Message}

	if e.ContainerID != "" {
		parts = append(parts, fmt.Sprintf("container=%s", e.ContainerID))
	}

	if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("operation=%s", e.Operation))
	}

	if e.Underlying != nil {
		cause := e.Underlying.Error()
		if len(cause) > constants.MaxErrorMessageLength {
			cause = cause[:constants.MaxErrorMessageLength] + "..."
		}
		parts = append(parts, fmt.Sprintf("cause=%s", cause))
	}

	return strings.Join(parts, ", ")
}

// Unwrap returns the underlying error
func (e *ContainerError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns true if the error might be resolved by retrying
func (e *ContainerError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetworkError, ErrorTypeTimeout, ErrorTypeRuntimeNotFound:
		return true
	default:
		return false
	}
}

// NewContainerError creates a new ContainerError
func NewContainerError(errType ErrorType, operation string, message string, underlying error) *ContainerError {
	return &ContainerError{
		Type:       errType,
		Operation:  operation,
		Message:    message,
		Underlying: underlying,
	}
}

// wrapError classifies a Docker client error into a ContainerError
func wrapError(operation, ref string, err error) *ContainerError {
	return &ContainerError{
		Type:        classify(err),
		Operation:   operation,
		ContainerID: ref,
		Message:     fmt.Sprintf("failed to %s container", operation),
		Underlying:  err,
	}
}

// IsNotFound reports whether err means the container does not exist
func IsNotFound(err error) bool {
	var containerErr *ContainerError
	if errors.As(err, &containerErr) {
		return containerErr.Type == ErrorTypeContainerNotFound
	}
	return client.IsErrNotFound(err)
}

// classify determines the error type from the Docker error definitions
func classify(err error) ErrorType {
	switch {
	case err == nil:
		return ErrorTypeUnknown
	case client.IsErrNotFound(err):
		return ErrorTypeContainerNotFound
	case client.IsErrConnectionFailed(err):
		return ErrorTypeRuntimeNotFound
	case errdefs.IsUnauthorized(err), errdefs.IsForbidden(err):
		return ErrorTypePermissionDenied
	case errdefs.IsConflict(err):
		return ErrorTypeConflict
	case errdefs.IsDeadline(err), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "pull access denied") || strings.Contains(msg, "manifest unknown"):
		return ErrorTypeImageNotFound
	case strings.Contains(msg, "network"):
		return ErrorTypeNetworkError
	default:
		return ErrorTypeUnknown
	}
}
