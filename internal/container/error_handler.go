package container

import (
	"errors"
	"strings"
)

// ErrorHandler provides user-friendly error messages and recovery suggestions
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// GetUserMessage returns a user-friendly error message with recovery suggestions
func (h *ErrorHandler) GetUserMessage(err error) string {
	var containerErr *ContainerError
	if !errors.As(err, &containerErr) {
		return err.Error()
	}

	var message strings.Builder
	message.WriteString(containerErr.Message)

	switch containerErr.Type {
	case ErrorTypeRuntimeNotFound:
		message.WriteString("\n\nPossible solutions:")
		message.WriteString("\n• Check if the Docker daemon is running: 'docker info'")
		message.WriteString("\n• Set DOCKER_HOST or runtime.docker_host if the daemon is remote")

	case ErrorTypeImageNotFound:
		message.WriteString("\n\nPossible solutions:")
		message.WriteString("\n• Check if the image name and tag are correct")
		message.WriteString("\n• Verify you are logged in to the registry")

	case ErrorTypePermissionDenied:
		message.WriteString("\n\nPossible solutions:")
		message.WriteString("\n• Add your user to the docker group: 'sudo usermod -aG docker $USER'")
		message.WriteString("\n• Log out and back in for group changes to take effect")

	case ErrorTypeConflict:
		message.WriteString("\n\nA container with the same name already exists.")
		message.WriteString("\n• Recreate the service to replace it")

	case ErrorTypeNetworkError:
		message.WriteString("\n\nNetwork issue detected. Possible solutions:")
		message.WriteString("\n• Verify the runtime.network setting names an existing network")
		message.WriteString("\n• Try restarting Docker")

	case ErrorTypeContainerNotFound:
		message.WriteString("\n\nContainer not found. It may have been removed outside traefiker.")
		message.WriteString("\n• Recreate the service to provision a new container")
	}

	return message.String()
}

// IsRecoverable returns true if the error might be resolved by user action
func (h *ErrorHandler) IsRecoverable(err error) bool {
	var containerErr *ContainerError
	if !errors.As(err, &containerErr) {
		return false
	}

	switch containerErr.Type {
	case ErrorTypeRuntimeNotFound, ErrorTypeImageNotFound,
		ErrorTypePermissionDenied, ErrorTypeNetworkError, ErrorTypeConflict:
		return true
	default:
		return false
	}
}
