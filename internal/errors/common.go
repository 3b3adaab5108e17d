package errors

import "fmt"

// Configuration Errors
func ConfigParseError(cause error) *TraefikerError {
	return Wrap(ErrConfigParse, "Failed to parse configuration", cause)
}

func ConfigValidationError(field, reason string) *TraefikerError {
	return NewWithDetails(ErrConfigValidation, "Configuration validation failed",
		fmt.Sprintf("Field: %s, Reason: %s", field, reason))
}

// Service Errors
func ServiceNotFound(name string) *TraefikerError {
	return NewWithDetails(ErrServiceNotFound, "Service not found", fmt.Sprintf("Service: %s", name)).
		WithContext("service", name)
}

func ServiceExists(name string) *TraefikerError {
	return NewWithDetails(ErrServiceExists, "Service already exists", fmt.Sprintf("Service: %s", name)).
		WithContext("service", name)
}

// ServiceConflict reports an operation that is not allowed in the service's current status.
func ServiceConflict(name, operation, status string) *TraefikerError {
	return NewWithDetails(ErrServiceConflict, "Operation not allowed in current state",
		fmt.Sprintf("Service: %s, Operation: %s, Status: %s", name, operation, status)).
		WithContext("service", name).
		WithContext("status", status)
}

func ContainerNotAttached(name, operation string) *TraefikerError {
	return NewWithDetails(ErrContainerNotAttached, "Service has no container attached",
		fmt.Sprintf("Service: %s, Operation: %s", name, operation)).
		WithContext("service", name)
}

// Project Errors
func ProjectNotFound(name string) *TraefikerError {
	return NewWithDetails(ErrProjectNotFound, "Project not found", fmt.Sprintf("Project: %s", name)).
		WithContext("project", name)
}

func ProjectExists(name string) *TraefikerError {
	return NewWithDetails(ErrProjectExists, "Project already exists", fmt.Sprintf("Project: %s", name)).
		WithContext("project", name)
}

// Image Errors
// Runtime Errors
func RuntimeFailure(operation, container string, cause error) *TraefikerError {
	return WrapWithDetails(ErrRuntime, "Container runtime operation failed",
		fmt.Sprintf("Operation: %s, Container: %s", operation, container), cause)
}

func RuntimeUnavailable(cause error) *TraefikerError {
	return Wrap(ErrRuntimeUnavailable, "Container runtime is not reachable", cause)
}

// Database Errors
func DatabaseConnectionError(cause error) *TraefikerError {
	return Wrap(ErrDatabaseConnection, "Database connection failed", cause)
}

func DatabaseMigrationError(version string, cause error) *TraefikerError {
	return WrapWithDetails(ErrDatabaseMigration, "Database migration failed",
		fmt.Sprintf("Version: %s", version), cause)
}

// Network/API Errors
func NetworkConnectionError(endpoint string, cause error) *TraefikerError {
	return WrapWithDetails(ErrNetworkConnection, "Network connection failed",
		fmt.Sprintf("Endpoint: %s", endpoint), cause)
}

func APICallError(method, url string, cause error) *TraefikerError {
	return WrapWithDetails(ErrAPICall, "API call failed",
		fmt.Sprintf("Method: %s, URL: %s", method, url), cause)
}

// Validation Errors
func InvalidRequest(reason string) *TraefikerError {
	return NewWithDetails(ErrInvalidRequest, "Invalid request", reason)
}

func ValidationFailed(field, value, reason string) *TraefikerError {
	return NewWithDetails(ErrValidationFailed, "Validation failed",
		fmt.Sprintf("Field: %s, Value: %s, Reason: %s", field, value, reason))
}

// Internal Errors
func InternalError(details string, cause error) *TraefikerError {
	if cause != nil {
		return WrapWithDetails(ErrInternal, "Internal error", details, cause)
	}
	return NewWithDetails(ErrInternal, "Internal error", details)
}

func TimeoutError(operation string, duration interface{}) *TraefikerError {
	return NewWithDetails(ErrTimeout, "Operation timed out",
		fmt.Sprintf("Operation: %s, Duration: %v", operation, duration))
}

func ShuttingDown() *TraefikerError {
	return New(ErrShuttingDown, "Service manager is shutting down")
}
