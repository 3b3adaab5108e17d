// Package app wires configuration, storage, the Docker runtime and the
// service manager into the CLI and the HTTP server.
package app

import (
	"context"
	"fmt"

	"traefiker/internal/cli"
	"traefiker/internal/config"
	"traefiker/internal/container"
	"traefiker/internal/db"
	"traefiker/internal/errors"
	"traefiker/internal/logger"
	"traefiker/internal/server"
	"traefiker/internal/service"
)

// App represents the main application
type App struct {
	Config  *config.Config
	DB      *db.DB
	Runtime *container.DockerRuntime
	Service *service.Manager
	Server  *server.Server
	CLI     *cli.Manager
}

// New creates a new application instance
func New() *App {
	return &App{}
}

// Run starts the application
func (a *App) Run(args []string) error {
	return a.RunWithContext(context.Background(), args)
}

// RunWithContext starts the application with a context for cancellation
func (a *App) RunWithContext(ctx context.Context, args []string) error {
	a.CLI = cli.New(a)

	// Show help if no arguments provided
	if len(args) == 0 {
		return a.CLI.ExecuteWithContext(ctx, []string{"--help"})
	}
	return a.CLI.ExecuteWithContext(ctx, args)
}

// OpenLocal initializes the in-process manager for a single CLI command
func (a *App) OpenLocal(ctx context.Context, configPath string) (*cli.Backend, error) {
	if err := a.init(ctx, configPath); err != nil {
		return nil, err
	}

	// A missing daemon should not block read-only commands
	if err := a.Runtime.EnsureNetwork(ctx, a.Config.Runtime.Network); err != nil {
		logger.WithError(err).WithField("network", a.Config.Runtime.Network).Warn("Failed to ensure Docker network")
	}

	return &cli.Backend{
		Services: a.Service,
		Wait:     a.Service.Wait,
		Close:    a.Close,
	}, nil
}

// Serve runs the HTTP API until ctx is cancelled
func (a *App) Serve(ctx context.Context, opts cli.ServeOptions) error {
	if err := a.init(ctx, opts.ConfigPath); err != nil {
		return err
	}
	defer a.Close()

	if opts.Host != "" {
		a.Config.Server.Host = opts.Host
	}
	if opts.Port != 0 {
		a.Config.Server.Port = opts.Port
	}

	if err := a.Runtime.Ping(ctx); err != nil {
		return errors.RuntimeUnavailable(err)
	}
	if err := a.Runtime.EnsureNetwork(ctx, a.Config.Runtime.Network); err != nil {
		return fmt.Errorf("failed to prepare network %s: %w", a.Config.Runtime.Network, err)
	}

	serverCfg := server.DefaultConfig()
	serverCfg.Host = a.Config.Server.Host
	serverCfg.Port = a.Config.Server.Port
	serverCfg.ReadTimeout = a.Config.Server.ReadTimeout.Std()
	serverCfg.WriteTimeout = a.Config.Server.WriteTimeout.Std()
	serverCfg.ShutdownTimeout = a.Config.Server.ShutdownTimeout.Std()

	a.Server = server.New(serverCfg, a.Service, a.DB)

	logger.WithFields(logger.Fields{
		"host":      serverCfg.Host,
		"port":      serverCfg.Port,
		"operation": "server_start",
	}).Info("Starting traefiker server")
	return a.Server.Start(ctx)
}

// init loads configuration and opens the database, runtime and manager
func (a *App) init(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.Config = cfg
	logger.SetLevel(cfg.Server.LogLevel)

	dbConfig := db.DefaultConfig(cfg.Database.DSN)
	dbConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	dbConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	database, err := db.New(dbConfig)
	if err != nil {
		return errors.DatabaseConnectionError(err).WithContext("path", cfg.Database.DSN)
	}
	a.DB = database

	if err := database.Migrate(); err != nil {
		database.Close()
		return errors.DatabaseMigrationError("latest", err)
	}
	if status, err := database.GetMigrationStatus(ctx); err == nil {
		logger.WithFields(logger.Fields{
			"version": status.Version,
			"dirty":   status.Dirty,
		}).Debug("Database schema ready")
	}

	runtime, err := container.NewDockerRuntime(container.DockerConfig{
		Host:        cfg.Runtime.DockerHost,
		StopTimeout: cfg.Runtime.StopTimeout.Std(),
	})
	if err != nil {
		database.Close()
		return err
	}
	a.Runtime = runtime

	a.Service = service.NewManager(db.NewStore(database), runtime, service.Options{
		ContainerPrefix:  cfg.Runtime.ContainerPrefix,
		Network:          cfg.Runtime.Network,
		Entrypoint:       cfg.Proxy.Entrypoint,
		CertResolver:     cfg.Proxy.CertResolver,
		OperationTimeout: cfg.Runtime.OperationTimeout.Std(),
		PullTimeout:      cfg.Runtime.PullTimeout.Std(),
	})
	return nil
}

// Close waits for background provisioning and releases resources
func (a *App) Close() error {
	if a.Service != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout.Std())
		if err := a.Service.Close(ctx); err != nil {
			logger.WithError(err).Warn("Provisioning jobs did not finish before shutdown")
		}
		cancel()
	}
	if a.Runtime != nil {
		a.Runtime.Close()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
