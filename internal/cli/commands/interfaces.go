package commands

import (
	"context"

	"traefiker/internal/db"
	"traefiker/internal/service"

	"github.com/spf13/cobra"
)

// ServiceOperations is the lifecycle surface shared by the local
// service.Manager and the remote api.Client
type ServiceOperations interface {
	CreateProject(ctx context.Context, name string) (*db.Project, error)
	ListProjects(ctx context.Context) ([]*db.Project, error)
	ListProjectServices(ctx context.Context, project string) ([]*service.Record, error)

	Get(ctx context.Context, name string) (*service.Record, error)
	List(ctx context.Context, opts service.ListOptions) (*db.PaginatedResponse[*service.Record], error)
	Create(ctx context.Context, req service.CreateRequest) (*service.Record, error)
	Update(ctx context.Context, name string, req service.UpdateRequest) (*service.Record, error)
	Start(ctx context.Context, name string) (*service.Record, error)
	Stop(ctx context.Context, name string) (*service.Record, error)
	Delete(ctx context.Context, name string) error
	Recreate(ctx context.Context, name, image string) (*service.Record, error)
}

// Backend is an opened ServiceOperations plus its lifecycle hooks
type Backend struct {
	Services ServiceOperations
	// Wait blocks until background work started in this process is done.
	// Nil when provisioning happens on a remote server.
	Wait func()
	// Close releases the backend; may be nil
	Close func() error
}

// Connector opens the backend selected by the command's flags
type Connector func(cmd *cobra.Command) (*Backend, error)

// ServeOptions overrides configured listen settings
type ServeOptions struct {
	ConfigPath string
	Host       string
	Port       int
}

// ServeFunc runs the HTTP API until ctx is cancelled
type ServeFunc func(ctx context.Context, opts ServeOptions) error
