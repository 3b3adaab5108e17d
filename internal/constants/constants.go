// Package constants defines application-wide constants to avoid magic numbers
package constants

import "time"

// Network and Port Constants
const (
	// DefaultServerHost is the default bind address for the API server
	DefaultServerHost = "127.0.0.1"

	// DefaultServerPort is the default port for the traefiker API server
	DefaultServerPort = 8080
)

// File System Permissions
const (
	// DirPermissions is the standard directory permissions for traefiker directories
	DirPermissions = 0755

	// FilePermissions is the standard file permissions for traefiker config files
	FilePermissions = 0644
)

// Database Configuration
const (
	// DefaultDatabaseDriver is the only supported driver
	DefaultDatabaseDriver = "sqlite3"

	// DefaultDatabaseFile is the database file name inside the XDG data dir
	DefaultDatabaseFile = "traefiker.db"

	// DefaultMaxOpenConnections is the default maximum number of database connections
	DefaultMaxOpenConnections = 25

	// DefaultMaxIdleConnections is the default maximum number of idle database connections
	DefaultMaxIdleConnections = 5

	// DefaultConnectionTimeout is the default database connection lifetime
	DefaultConnectionTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the default database idle connection timeout
	DefaultIdleTimeout = 1 * time.Minute
)

// HTTP Configuration
const (
	// DefaultHTTPClientTimeout is the default timeout for HTTP client requests
	DefaultHTTPClientTimeout = 30 * time.Second

	// DefaultServerReadTimeout is the default server read timeout
	DefaultServerReadTimeout = 10 * time.Second

	// DefaultServerWriteTimeout is the default server write timeout
	DefaultServerWriteTimeout = 30 * time.Second

	// DefaultServerShutdownTimeout is the default server graceful shutdown timeout
	DefaultServerShutdownTimeout = 30 * time.Second
)

// Container runtime
const (
	// DefaultNetwork is the network containers join so the proxy can reach them
	DefaultNetwork = "traefiker"

	// DefaultContainerPrefix prefixes the deterministic container name of a service
	DefaultContainerPrefix = "traefiker_"

	// DefaultOperationTimeout bounds start/stop/remove/inspect calls
	DefaultOperationTimeout = 2 * time.Minute

	// DefaultPullTimeout bounds container creation, which may pull the image
	DefaultPullTimeout = 10 * time.Minute

	// DefaultStopGracePeriod is passed to the runtime when stopping a container
	DefaultStopGracePeriod = 10 * time.Second
)

// Proxy labels
const (
	// DefaultEntrypoint is the proxy entrypoint routers attach to
	DefaultEntrypoint = "web"

	// LabelManaged marks containers owned by traefiker
	LabelManaged = "traefiker.managed"

	// LabelService carries the owning service name
	LabelService = "traefiker.service"

	// LabelProject carries the owning project name
	LabelProject = "traefiker.project"
)

// Pagination Constants
const (
	// DefaultPageSize is the default number of items per page in paginated responses
	DefaultPageSize = 20

	// MaxPageSize is the maximum allowed page size to prevent resource exhaustion
	MaxPageSize = 100
)

// Logging and Output Limits
const (
	// MaxErrorMessageLength is the maximum length for error messages before truncation
	MaxErrorMessageLength = 500
)

// Network Port Validation
const (
	// MinPortNumber is the minimum valid TCP port number
	MinPortNumber = 1

	// MaxPortNumber is the maximum valid TCP port number
	MaxPortNumber = 65535
)
