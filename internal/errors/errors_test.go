package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := map[*TraefikerError]int{
		ConfigParseError(errors.New("bad toml")):      http.StatusInternalServerError,
		ConfigValidationError("port", "out of range"): http.StatusBadRequest,
		ServiceNotFound("web"):                        http.StatusNotFound,
		ServiceExists("web"):                          http.StatusConflict,
		ProjectNotFound("shop"):                       http.StatusNotFound,
		ProjectExists("shop"):                         http.StatusConflict,
		InvalidRequest("no fields"):                   http.StatusBadRequest,
		ValidationFailed("name", "", "empty"):         http.StatusBadRequest,
		ServiceConflict("web", "start", "RUNNING"):    http.StatusConflict,
		ContainerNotAttached("web", "stop"):           http.StatusConflict,
		RuntimeFailure("start", "abc", nil):           http.StatusBadGateway,
		RuntimeUnavailable(errors.New("no socket")):   http.StatusBadGateway,
		DatabaseConnectionError(nil):                  http.StatusInternalServerError,
		DatabaseMigrationError("2", nil):              http.StatusInternalServerError,
		NetworkConnectionError("http://x", nil):       http.StatusInternalServerError,
		APICallError("GET", "http://x", nil):          http.StatusInternalServerError,
		TimeoutError("create", "2m"):                  http.StatusGatewayTimeout,
		ShuttingDown():                                http.StatusServiceUnavailable,
		InternalError("boom", errors.New("cause")):    http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.GetHTTPStatus(), string(err.Code))
	}
}

func TestClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", ServiceConflict("web", "stop", "STOPPED"))

	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.True(t, HasCode(err, ErrServiceConflict))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
}

func TestResponseRoundTrip(t *testing.T) {
	status, body := ToResponse(ServiceNotFound("web"))
	require.Equal(t, http.StatusNotFound, status)

	rebuilt := FromResponse(status, body)
	assert.True(t, IsNotFound(rebuilt))
	assert.Equal(t, "web", rebuilt.Context["service"])
	assert.Equal(t, http.StatusNotFound, rebuilt.GetHTTPStatus())
}

func TestToResponseHidesUntypedErrors(t *testing.T) {
	status, body := ToResponse(errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrInternal, body.Error.Code)
	assert.NotContains(t, body.Error.Message, "disk")
}
