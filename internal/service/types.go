package service

import (
	"time"

	"traefiker/internal/db"
)

// EnvVar is a caller-supplied environment override
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RedirectSpec is a caller-supplied redirect rule
type RedirectSpec struct {
	Regex       string `json:"regex"`
	Replacement string `json:"replacement"`
	Permanent   bool   `json:"permanent"`
}

// CreateRequest describes a new service
type CreateRequest struct {
	Name    string   `json:"name"`
	Image   string   `json:"image"`
	Hosts   []string `json:"hosts"`
	Project string   `json:"project"`
	Owner   string   `json:"owner,omitempty"`
}

// UpdateRequest changes container-affecting configuration. A nil field was
// not supplied; an empty Hosts slice clears the hosts.
type UpdateRequest struct {
	Hosts       []string       `json:"hosts"`
	Environment []EnvVar       `json:"environment_variables,omitempty"`
	Redirects   []RedirectSpec `json:"redirects,omitempty"`
}

// IsEmpty reports whether no field was supplied
func (r UpdateRequest) IsEmpty() bool {
	return r.Hosts == nil && r.Environment == nil && r.Redirects == nil
}

// RecreateRequest optionally switches the service to a new image
type RecreateRequest struct {
	Image string `json:"image,omitempty"`
}

// ListOptions filters and pages service listings
type ListOptions struct {
	Project  string           `json:"project,omitempty"`
	Status   db.ServiceStatus `json:"status,omitempty"`
	Page     int              `json:"page,omitempty"`
	PageSize int              `json:"page_size,omitempty"`
}

// Record is a service together with everything it owns
type Record struct {
	*db.Service
	Project     string                   `json:"project"`
	Image       *db.Image                `json:"image,omitempty"`
	Container   *db.ContainerInfo        `json:"container,omitempty"`
	Environment []db.EnvironmentVariable `json:"environment_variables"`
	Redirects   []db.Redirect            `json:"redirects"`
}

// Options configures a Manager
type Options struct {
	// ContainerPrefix is prepended to the service name to form the container name
	ContainerPrefix string
	// Network the service containers join; the proxy routes over it
	Network      string
	Entrypoint   string
	CertResolver string

	// OperationTimeout bounds every runtime call except create
	OperationTimeout time.Duration
	// PullTimeout bounds container creation, which may pull the image
	PullTimeout time.Duration
}
