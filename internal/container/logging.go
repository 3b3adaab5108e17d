package container

import (
	"errors"

	"traefiker/internal/logger"
)

func errorFields(err error, operation string) logger.Fields {
	fields := logger.Fields{
		"operation": operation,
	}

	var containerErr *ContainerError
	if errors.As(err, &containerErr) {
		fields["error_type"] = string(containerErr.Type)
		if containerErr.ContainerID != "" {
			fields["container_id"] = containerErr.ContainerID
		}
		if containerErr.IsRetryable() {
			fields["retryable"] = true
		}
	}
	return fields
}

// LogContainerError logs a container error with structured fields
func LogContainerError(err error, operation string) {
	if err == nil {
		return
	}
	logger.WithFields(errorFields(err, operation)).WithError(err).Error("Container operation failed")
}

// LogContainerWarning logs a container warning with structured fields
func LogContainerWarning(err error, operation string) {
	if err == nil {
		return
	}
	logger.WithFields(errorFields(err, operation)).WithError(err).Warn("Container operation warning")
}
