package commands

import (
	stderrors "errors"
	"fmt"
	"os"

	"traefiker/internal/container"
	"traefiker/internal/errors"
	"traefiker/internal/logger"
)

// HandleError processes errors and provides user-friendly output
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	// Runtime failures carry the daemon's error; explain it
	var containerErr *container.ContainerError
	if stderrors.As(err, &containerErr) {
		logger.WithError(err).Debug("Container operation failed")
		return fmt.Errorf("%s", container.NewErrorHandler().GetUserMessage(containerErr))
	}

	switch errors.GetCode(err) {
	case errors.ErrServiceNotFound:
		return fmt.Errorf("%v\n\nTip: Use 'traefiker service list' to see available services.", err)
	case errors.ErrProjectNotFound:
		return fmt.Errorf("%v\n\nTip: Use 'traefiker project create' to register the project first.", err)
	case errors.ErrServiceConflict:
		return fmt.Errorf("%v\n\nTip: Use 'traefiker service get' to check the current status.", err)
	case errors.ErrNetworkConnection:
		return fmt.Errorf("%v\n\nTip: Check that the server is running and --server or TRAEFIKER_SERVER is correct.", err)
	default:
		return err
	}
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var containerErr *container.ContainerError
	if stderrors.As(err, &containerErr) {
		switch containerErr.Type {
		case container.ErrorTypeRuntimeNotFound:
			return 127
		case container.ErrorTypePermissionDenied:
			return 126
		case container.ErrorTypeContainerNotFound, container.ErrorTypeImageNotFound:
			return 2
		}
		return 1
	}

	switch {
	case errors.IsNotFound(err):
		return 2
	case errors.IsInvalidRequest(err):
		return 64
	}
	return 1
}

// ExitOnError handles errors consistently across CLI commands
func ExitOnError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", HandleError(err))
	os.Exit(ExitCode(err))
}
