// Package api is the HTTP client for a remote traefiker server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"traefiker/internal/constants"
	"traefiker/internal/db"
	"traefiker/internal/errors"
	"traefiker/internal/service"
)

// Client talks to the traefiker REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client instance
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPClientTimeout,
		},
	}
}

type projectsResponse struct {
	Projects []*db.Project `json:"projects"`
	Total    int           `json:"total"`
}

type servicesResponse struct {
	Services []*service.Record `json:"services"`
	Total    int               `json:"total"`
}

// CreateProject registers a project
func (c *Client) CreateProject(ctx context.Context, name string) (*db.Project, error) {
	var project db.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", map[string]string{"name": name}, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects lists all projects
func (c *Client) ListProjects(ctx context.Context) ([]*db.Project, error) {
	var resp projectsResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// ListProjectServices lists the services of one project
func (c *Client) ListProjectServices(ctx context.Context, project string) ([]*service.Record, error) {
	var resp servicesResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(project)+"/services", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}

// Get fetches a single service
func (c *Client) Get(ctx context.Context, name string) (*service.Record, error) {
	return c.record(ctx, http.MethodGet, servicePath(name, ""), nil)
}

// List fetches a page of services
func (c *Client) List(ctx context.Context, opts service.ListOptions) (*db.PaginatedResponse[*service.Record], error) {
	query := url.Values{}
	if opts.Project != "" {
		query.Set("project", opts.Project)
	}
	if opts.Status != "" {
		query.Set("status", string(opts.Status))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(opts.PageSize))
	}

	path := "/api/services"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page db.PaginatedResponse[*service.Record]
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Create registers a service; provisioning continues on the server
func (c *Client) Create(ctx context.Context, req service.CreateRequest) (*service.Record, error) {
	return c.record(ctx, http.MethodPost, "/api/services", req)
}

// Update changes routing or environment of a service
func (c *Client) Update(ctx context.Context, name string, req service.UpdateRequest) (*service.Record, error) {
	return c.record(ctx, http.MethodPut, servicePath(name, ""), req)
}

// Start starts a stopped service
func (c *Client) Start(ctx context.Context, name string) (*service.Record, error) {
	return c.record(ctx, http.MethodPost, servicePath(name, "start"), nil)
}

// Stop stops a running service
func (c *Client) Stop(ctx context.Context, name string) (*service.Record, error) {
	return c.record(ctx, http.MethodPost, servicePath(name, "stop"), nil)
}

// Recreate rebuilds the container of a service, optionally on a new image
func (c *Client) Recreate(ctx context.Context, name, image string) (*service.Record, error) {
	var body interface{}
	if image != "" {
		body = service.RecreateRequest{Image: image}
	}
	return c.record(ctx, http.MethodPost, servicePath(name, "recreate"), body)
}

// Delete removes a service and its container
func (c *Client) Delete(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, servicePath(name, ""), nil, nil)
}

// Health reports whether the server answers its health endpoint
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func servicePath(name, action string) string {
	path := "/api/services/" + url.PathEscape(name)
	if action != "" {
		path += "/" + action
	}
	return path
}

func (c *Client) record(ctx context.Context, method, path string, body interface{}) (*service.Record, error) {
	var rec service.Record
	if err := c.do(ctx, method, path, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Internal HTTP methods

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return errors.APICallError(method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NetworkConnectionError(c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.APICallError(method, target, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var body errors.HTTPErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Message == "" {
		return errors.FromResponse(resp.StatusCode, errors.HTTPErrorResponse{
			Error: errors.ErrorInfo{
				Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
				Details: strings.TrimSpace(string(data)),
			},
		})
	}
	return errors.FromResponse(resp.StatusCode, body)
}
