package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"traefiker/internal/constants"
	"traefiker/internal/db"
	"traefiker/internal/logger"
	"traefiker/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds the server configuration
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// CORS settings
	AllowOrigins []string
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            constants.DefaultServerHost,
		Port:            constants.DefaultServerPort,
		ReadTimeout:     constants.DefaultServerReadTimeout,
		WriteTimeout:    constants.DefaultServerWriteTimeout,
		ShutdownTimeout: constants.DefaultServerShutdownTimeout,
		AllowOrigins:    []string{"*"},
	}
}

// ServiceManager is the service lifecycle surface the API exposes
type ServiceManager interface {
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

// HealthChecker reports whether a backing store is usable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server represents the main HTTP server
type Server struct {
	config    *Config
	echo      *echo.Echo
	services  ServiceManager
	health    HealthChecker
	startTime time.Time
}

// New creates a server exposing services. health may be nil.
func New(cfg *Config, services ServiceManager, health HealthChecker) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	s := &Server{
		config:    cfg,
		echo:      e,
		services:  services,
		health:    health,
		startTime: time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Echo returns the Echo instance
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()
	logger.WithField("addr", addr).Info("Server listening")

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(logger.RequestLogger())
	s.echo.Use(requestIDHeader)
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.config.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
}
