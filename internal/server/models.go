package server

import (
	"traefiker/internal/db"
	"traefiker/internal/errors"
	"traefiker/internal/service"
)

// ErrorResponse is the body of every error response
type ErrorResponse = errors.HTTPErrorResponse

// HealthResponse reports server health
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Uptime   string `json:"uptime" example:"2h30m15s"`
	Database string `json:"database" example:"healthy"`
}

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name string `json:"name" example:"shop"`
}

// ProjectsResponse represents a list of projects
type ProjectsResponse struct {
	Projects []*db.Project `json:"projects"`
	Total    int           `json:"total" example:"2"`
}

// ServicesResponse represents a list of services
type ServicesResponse struct {
	Services []*service.Record `json:"services"`
	Total    int               `json:"total" example:"3"`
}

// ServicePage is one page of services
type ServicePage = db.PaginatedResponse[*service.Record]
