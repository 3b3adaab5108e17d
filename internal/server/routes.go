package server

import (
	"context"
	"net/http"
	"time"

	"traefiker/internal/db"
	"traefiker/internal/errors"
	"traefiker/internal/metrics"
	"traefiker/internal/service"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.echo.Group("/api")

	projects := api.Group("/projects")
	projects.GET("", s.handleListProjects)
	projects.POST("", s.handleCreateProject)
	projects.GET("/:name/services", s.handleListProjectServices)

	services := api.Group("/services")
	services.GET("", s.handleListServices)
	services.POST("", s.handleCreateService)
	services.GET("/:name", s.handleGetService)
	services.PUT("/:name", s.handleUpdateService)
	services.DELETE("/:name", s.handleDeleteService)
	services.POST("/:name/start", s.handleStartService)
	services.POST("/:name/stop", s.handleStopService)
	services.POST("/:name/recreate", s.handleRecreateService)
}

func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return errors.ToHTTPError(errors.InvalidRequest("malformed request body").WithCause(err))
	}
	return nil
}

// handleHealth godoc
// @Summary Health check
// @Description Check that the API and its database are usable
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{
		Status:   "healthy",
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
		Database: "healthy",
	}

	if s.health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := s.health.HealthCheck(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Database = "unhealthy"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// handleListProjects godoc
// @Summary List projects
// @Tags projects
// @Produce json
// @Success 200 {object} ProjectsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/projects [get]
func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.services.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ProjectsResponse{Projects: projects, Total: len(projects)})
}

// handleCreateProject godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Param request body CreateProjectRequest true "Project"
// @Success 201 {object} db.Project
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/projects [post]
func (s *Server) handleCreateProject(c echo.Context) error {
	var req CreateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	project, err := s.services.CreateProject(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

// handleListProjectServices godoc
// @Summary List the services of a project
// @Tags projects
// @Produce json
// @Param name path string true "Project name"
// @Success 200 {object} ServicesResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/projects/{name}/services [get]
func (s *Server) handleListProjectServices(c echo.Context) error {
	records, err := s.services.ListProjectServices(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ServicesResponse{Services: records, Total: len(records)})
}

// handleListServices godoc
// @Summary List services
// @Tags services
// @Produce json
// @Param project query string false "Project name"
// @Param status query string false "Status" Enums(PULLING, CREATED, RUNNING, STOPPED, ERROR)
// @Param page query int false "Page, starting at 1"
// @Param page_size query int false "Page size"
// @Success 200 {object} ServicePage
// @Failure 400 {object} ErrorResponse
// @Router /api/services [get]
func (s *Server) handleListServices(c echo.Context) error {
	opts := service.ListOptions{Project: c.QueryParam("project")}

	if raw := c.QueryParam("status"); raw != "" {
		status, ok := db.ParseServiceStatus(raw)
		if !ok {
			return errors.ValidationFailed("status", raw, "unknown status")
		}
		opts.Status = status
	}

	err := echo.QueryParamsBinder(c).
		Int("page", &opts.Page).
		Int("page_size", &opts.PageSize).
		BindError()
	if err != nil {
		return errors.InvalidRequest("page and page_size must be integers").WithCause(err)
	}

	page, err := s.services.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// handleCreateService godoc
// @Summary Create a service
// @Description Stores the service in PULLING and provisions its container in the background
// @Tags services
// @Accept json
// @Produce json
// @Param request body service.CreateRequest true "Service"
// @Success 202 {object} service.Record
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/services [post]
func (s *Server) handleCreateService(c echo.Context) error {
	var req service.CreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rec, err := s.services.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, rec)
}

// handleGetService godoc
// @Summary Get a service
// @Tags services
// @Produce json
// @Param name path string true "Service name"
// @Success 200 {object} service.Record
// @Failure 404 {object} ErrorResponse
// @Router /api/services/{name} [get]
func (s *Server) handleGetService(c echo.Context) error {
	rec, err := s.services.Get(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// handleUpdateService godoc
// @Summary Update a service
// @Description Changes hosts, appends environment variables and redirects, then replaces the container
// @Tags services
// @Accept json
// @Produce json
// @Param name path string true "Service name"
// @Param request body service.UpdateRequest true "Changes"
// @Success 202 {object} service.Record
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/services/{name} [put]
func (s *Server) handleUpdateService(c echo.Context) error {
	var req service.UpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rec, err := s.services.Update(c.Request().Context(), c.Param("name"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, rec)
}

// handleDeleteService godoc
// @Summary Delete a service
// @Tags services
// @Param name path string true "Service name"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/services/{name} [delete]
func (s *Server) handleDeleteService(c echo.Context) error {
	if err := s.services.Delete(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleStartService godoc
// @Summary Start a service
// @Tags services
// @Produce json
// @Param name path string true "Service name"
// @Success 200 {object} service.Record
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/services/{name}/start [post]
func (s *Server) handleStartService(c echo.Context) error {
	rec, err := s.services.Start(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// handleStopService godoc
// @Summary Stop a service
// @Tags services
// @Produce json
// @Param name path string true "Service name"
// @Success 200 {object} service.Record
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/services/{name}/stop [post]
func (s *Server) handleStopService(c echo.Context) error {
	rec, err := s.services.Stop(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// handleRecreateService godoc
// @Summary Recreate a service container
// @Description Replaces the container, optionally with a new image. The new container is not started.
// @Tags services
// @Accept json
// @Produce json
// @Param name path string true "Service name"
// @Param request body service.RecreateRequest false "New image"
// @Success 202 {object} service.Record
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/services/{name}/recreate [post]
func (s *Server) handleRecreateService(c echo.Context) error {
	var req service.RecreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rec, err := s.services.Recreate(c.Request().Context(), c.Param("name"), req.Image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, rec)
}
