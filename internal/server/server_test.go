package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"traefiker/internal/db"
	"traefiker/internal/errors"
	"traefiker/internal/service"
	"traefiker/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	manager *service.Manager
	runtime *testutil.FakeRuntime
	handler http.Handler
}

func (s *ServerTestSuite) SetupTest() {
	database := testutil.SetupTestDB(s.T())
	s.runtime = testutil.NewFakeRuntime()
	s.manager = service.NewManager(db.NewStore(database), s.runtime, service.Options{
		Network:          "traefiker",
		OperationTimeout: 5 * time.Second,
		PullTimeout:      5 * time.Second,
	})
	s.handler = New(nil, s.manager, database).Handler()

	rec := testutil.ServeJSON(s.handler, http.MethodPost, "/api/projects", CreateProjectRequest{Name: "default"})
	s.Require().Equal(http.StatusCreated, rec.Code)
}

func (s *ServerTestSuite) TearDownTest() {
	s.manager.Close(context.Background())
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) decodeError(body string) *errors.HTTPErrorResponse {
	resp, err := testutil.ParseErrorResponse(strings.NewReader(body))
	s.Require().NoError(err)
	return resp
}

func (s *ServerTestSuite) createService(name string) *service.Record {
	rec := testutil.ServeJSON(s.handler, http.MethodPost, "/api/services", service.CreateRequest{
		Name:    name,
		Image:   "traefik/whoami",
		Hosts:   []string{name + ".example.com"},
		Project: "default",
	})
	s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())

	var created service.Record
	s.Require().NoError(testutil.DecodeJSON(rec.Body, &created))
	return &created
}

func (s *ServerTestSuite) getService(name string) *service.Record {
	rec := testutil.ServeJSON(s.handler, http.MethodGet, "/api/services/"+name, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var got service.Record
	s.Require().NoError(testutil.DecodeJSON(rec.Body, &got))
	return &got
}

func (s *ServerTestSuite) TestHealth() {
	rec := testutil.ServeJSON(s.handler, http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)

	var health HealthResponse
	s.Require().NoError(testutil.DecodeJSON(rec.Body, &health))
	s.Equal("healthy", health.Status)
	s.NotEmpty(rec.Header().Get("X-Request-Id"))
}

func (s *ServerTestSuite) TestMetrics() {
	s.createService("web")
	s.manager.Wait()

	rec := testutil.ServeJSON(s.handler, http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "traefiker_lifecycle_operations_total")
}

func (s *ServerTestSuite) TestProjects() {
	rec := testutil.ServeJSON(s.handler, http.MethodPost, "/api/projects", CreateProjectRequest{Name: "default"})
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(errors.ErrProjectExists, s.decodeError(rec.Body.String()).Error.Code)

	rec = testutil.ServeJSON(s.handler, http.MethodGet, "/api/projects", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var projects ProjectsResponse
	s.Require().NoError(testutil.DecodeJSON(rec.Body, &projects))
	s.Equal(1, projects.Total)

	s.createService("web")
	rec = testutil.ServeJSON(s.handler, http.MethodGet, "/api/projects/default/services", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var services ServicesResponse
	s.Require().NoError(testutil.DecodeJSON(rec.Body, &services))
	s.Equal(1, services.Total)

	rec = testutil.ServeJSON(s.handler, http.MethodGet, "/api/projects/missing/services", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestServiceLifecycle() {
	created := s.createService("web")
	s.Equal(db.StatusPulling, created.Status)
	s.Nil(created.Container)

	s.manager.Wait()
	got := s.getService("web")
	s.Equal(db.StatusRunning, got.Status)
	s.Require().NotNil(got.Container)

	rec := testutil.ServeJSON(s.handler, http.MethodPost, "/api/services/web/start", nil)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(errors.ErrServiceConflict, s.decodeError(rec.Body.String()).Error.Code)

	rec = testutil.ServeJSON(s.handler, http.MethodPost, "/api/services/web/stop", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(db.StatusStopped, s.getService("web").Status)

	rec = testutil.ServeJSON(s.handler, http.MethodPost, "/api/services/web/recreate", service.RecreateRequest{Image: "traefik/whoami:v1.10"})
	s.Require().Equal(http.StatusAccepted, rec.Code)
	s.manager.Wait()
	got = s.getService("web")
	s.Equal(db.StatusCreated, got.Status)
	s.Equal("docker.io/traefik/whoami:v1.10", got.Image.Name)

	rec = testutil.ServeJSON(s.handler, http.MethodDelete, "/api/services/web", nil)
	s.Equal(http.StatusNoContent, rec.Code)
	rec = testutil.ServeJSON(s.handler, http.MethodDelete, "/api/services/web", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(errors.ErrServiceNotFound, s.decodeError(rec.Body.String()).Error.Code)
}

func (s *ServerTestSuite) TestUpdate() {
	s.createService("web")
	s.manager.Wait()
	calls := s.runtime.TotalCalls()

	rec := testutil.ServeJSON(s.handler, http.MethodPut, "/api/services/web", map[string]interface{}{})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(errors.ErrInvalidRequest, s.decodeError(rec.Body.String()).Error.Code)
	s.Equal(calls, s.runtime.TotalCalls())

	rec = testutil.ServeJSON(s.handler, http.MethodPut, "/api/services/web", service.UpdateRequest{
		Hosts:       []string{"shop.example.com"},
		Environment: []service.EnvVar{{Key: "FOO", Value: "bar=baz"}},
	})
	s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())
	s.manager.Wait()

	got := s.getService("web")
	s.Equal(db.StatusRunning, got.Status)
	s.Equal(db.StringList{"shop.example.com"}, got.Hosts)
}

func (s *ServerTestSuite) TestCreateErrors() {
	rec := testutil.ServeJSON(s.handler, http.MethodPost, "/api/services", service.CreateRequest{Name: "web", Image: "nginx", Project: "nope"})
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(errors.ErrProjectNotFound, s.decodeError(rec.Body.String()).Error.Code)

	rec = testutil.ServeJSON(s.handler, http.MethodPost, "/api/services", service.CreateRequest{Name: "", Image: "nginx", Project: "default"})
	s.Equal(http.StatusBadRequest, rec.Code)

	s.createService("web")
	rec = testutil.ServeJSON(s.handler, http.MethodPost, "/api/services", service.CreateRequest{Name: "web", Image: "nginx", Project: "default"})
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(errors.ErrServiceExists, s.decodeError(rec.Body.String()).Error.Code)
}

func (s *ServerTestSuite) TestListServices() {
	s.createService("web")
	s.createService("api")
	s.manager.Wait()

	rec := testutil.ServeJSON(s.handler, http.MethodGet, "/api/services?status=running&page_size=1", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var page ServicePage
	s.Require().NoError(testutil.DecodeJSON(rec.Body, &page))
	s.Equal(2, page.TotalItems)
	s.Len(page.Data, 1)

	rec = testutil.ServeJSON(s.handler, http.MethodGet, "/api/services?status=sleeping", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = testutil.ServeJSON(s.handler, http.MethodGet, "/api/services?page=abc", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/services", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(errors.ErrInvalidRequest, s.decodeError(rec.Body.String()).Error.Code)
	s.Zero(s.runtime.TotalCalls())
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	status, body := errorResponse(errors.InternalError("database exploded", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, errors.ErrInternal, body.Error.Code)
	assert.NotContains(t, body.Error.Message, "exploded")
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	handler := New(nil, nil, nil).Handler()

	rec := testutil.ServeJSON(handler, http.MethodGet, "/api/nothing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp, err := testutil.ParseErrorResponse(rec.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Error.Message)
}
