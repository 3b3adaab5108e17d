package container

import (
	"context"
)

// Runtime is the set of container operations the service lifecycle needs.
// A ref is either a container ID or a container name.
type Runtime interface {
	// Create creates a container, pulling the image first when it is missing
	Create(ctx context.Context, spec *CreateSpec) (*Handle, error)

	// Start starts a container
	Start(ctx context.Context, ref string) error

	// Stop stops a running container
	Stop(ctx context.Context, ref string) error

	// Remove force-removes a container. A container that does not exist is not an error.
	Remove(ctx context.Context, ref string) error

	// Inspect reports the container's identity, network mode and environment
	Inspect(ctx context.Context, ref string) (*Inspection, error)
}

// CreateSpec describes the container backing one service
type CreateSpec struct {
	Name    string
	Image   string
	Env     []string // KEY=VALUE entries
	Labels  map[string]string
	Network string
}

// Handle identifies a freshly created container
type Handle struct {
	ID   string
	Name string
}

// Inspection is the subset of container state recorded on attach
type Inspection struct {
	ID          string
	Name        string
	NetworkMode string
	Env         []string
	State       string
}
