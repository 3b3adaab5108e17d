// Package config loads the traefiker configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"traefiker/internal/constants"
	"traefiker/internal/errors"
	"traefiker/internal/xdg"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file inside the XDG config directory.
const FileName = "config.toml"

// Config represents the traefiker configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Runtime  RuntimeConfig  `toml:"runtime"`
	Proxy    ProxyConfig    `toml:"proxy"`
}

type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	LogLevel        string   `toml:"log_level"`
}

type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"` // Path to the sqlite file
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

type RuntimeConfig struct {
	DockerHost       string   `toml:"docker_host"` // Empty means DOCKER_HOST / default socket
	Network          string   `toml:"network"`
	ContainerPrefix  string   `toml:"container_prefix"`
	OperationTimeout Duration `toml:"operation_timeout"`
	PullTimeout      Duration `toml:"pull_timeout"`
	StopTimeout      Duration `toml:"stop_timeout"`
}

// ProxyConfig controls the routing labels put on service containers.
type ProxyConfig struct {
	Entrypoint   string `toml:"entrypoint"`
	CertResolver string `toml:"cert_resolver"` // Adds TLS router labels when set
}

// Duration is a time.Duration that reads and writes as a string ("2m", "30s").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            constants.DefaultServerHost,
			Port:            constants.DefaultServerPort,
			ReadTimeout:     Duration(constants.DefaultServerReadTimeout),
			WriteTimeout:    Duration(constants.DefaultServerWriteTimeout),
			ShutdownTimeout: Duration(constants.DefaultServerShutdownTimeout),
			LogLevel:        "info",
		},
		Database: DatabaseConfig{
			Driver:       constants.DefaultDatabaseDriver,
			MaxOpenConns: constants.DefaultMaxOpenConnections,
			MaxIdleConns: constants.DefaultMaxIdleConnections,
		},
		Runtime: RuntimeConfig{
			Network:          constants.DefaultNetwork,
			ContainerPrefix:  constants.DefaultContainerPrefix,
			OperationTimeout: Duration(constants.DefaultOperationTimeout),
			PullTimeout:      Duration(constants.DefaultPullTimeout),
			StopTimeout:      Duration(constants.DefaultStopGracePeriod),
		},
		Proxy: ProxyConfig{
			Entrypoint: constants.DefaultEntrypoint,
		},
	}
}

// DefaultPath returns the config file location in the XDG config directory
func DefaultPath() (string, error) {
	configDir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// Load reads the configuration at path. An empty path means DefaultPath.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		cfg = Default()
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.ConfigParseError(err).WithContext("path", path)
		}
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating the directory if needed
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, constants.FilePermissions)
}

// Validate checks value ranges and required fields
func (c *Config) Validate() error {
	if c.Server.Port < constants.MinPortNumber || c.Server.Port > constants.MaxPortNumber {
		return errors.ConfigValidationError("server.port", fmt.Sprintf("invalid port: %d", c.Server.Port))
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.ConfigValidationError("server.log_level", fmt.Sprintf("unknown level %q", c.Server.LogLevel))
	}
	if c.Database.Driver != constants.DefaultDatabaseDriver {
		return errors.ConfigValidationError("database.driver", fmt.Sprintf("unsupported driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		return errors.ConfigValidationError("database.dsn", "cannot be empty")
	}
	if c.Runtime.Network == "" {
		return errors.ConfigValidationError("runtime.network", "cannot be empty")
	}
	if c.Runtime.OperationTimeout <= 0 || c.Runtime.PullTimeout <= 0 {
		return errors.ConfigValidationError("runtime", "timeouts must be positive")
	}
	if c.Proxy.Entrypoint == "" {
		return errors.ConfigValidationError("proxy.entrypoint", "cannot be empty")
	}
	return nil
}

// applyDefaults fills zero values from Default
func (c *Config) applyDefaults() error {
	defaults := Default()

	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}

	if c.Database.Driver == "" {
		c.Database.Driver = defaults.Database.Driver
	}
	if c.Database.DSN == "" {
		dataDir, err := xdg.DataDir()
		if err != nil {
			return fmt.Errorf("failed to resolve data directory: %w", err)
		}
		c.Database.DSN = filepath.Join(dataDir, constants.DefaultDatabaseFile)
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}

	if c.Runtime.Network == "" {
		c.Runtime.Network = defaults.Runtime.Network
	}
	if c.Runtime.ContainerPrefix == "" {
		c.Runtime.ContainerPrefix = defaults.Runtime.ContainerPrefix
	}
	if c.Runtime.OperationTimeout == 0 {
		c.Runtime.OperationTimeout = defaults.Runtime.OperationTimeout
	}
	if c.Runtime.PullTimeout == 0 {
		c.Runtime.PullTimeout = defaults.Runtime.PullTimeout
	}
	if c.Runtime.StopTimeout == 0 {
		c.Runtime.StopTimeout = defaults.Runtime.StopTimeout
	}

	if c.Proxy.Entrypoint == "" {
		c.Proxy.Entrypoint = defaults.Proxy.Entrypoint
	}
	return nil
}

// expandPaths expands tilde paths in the configuration
func (c *Config) expandPaths() error {
	if !strings.HasPrefix(c.Database.DSN, "~/") {
		return nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	c.Database.DSN = filepath.Join(homeDir, c.Database.DSN[2:])
	return nil
}
