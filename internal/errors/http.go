package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorResponse represents the structure of error responses sent to clients
type HTTPErrorResponse struct {
	Error   ErrorInfo              `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// ErrorInfo contains the core error information
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// ToResponse converts any error into the wire response and its status code.
// Internal failures are surfaced generically; their cause stays in the logs.
func ToResponse(err error) (int, HTTPErrorResponse) {
	te, ok := As(err)
	if !ok || te.Code == ErrInternal {
		return http.StatusInternalServerError, HTTPErrorResponse{
			Error: ErrorInfo{
				Code:    ErrInternal,
				Message: "Internal server error",
			},
		}
	}

	return te.GetHTTPStatus(), HTTPErrorResponse{
		Error: ErrorInfo{
			Code:    te.Code,
			Message: te.Message,
			Details: te.Details,
		},
		Context: te.Context,
	}
}

// ToHTTPError converts an error to an Echo HTTP error
func ToHTTPError(err error) error {
	status, body := ToResponse(err)
	return echo.NewHTTPError(status, body)
}

// FromResponse rebuilds a TraefikerError from a decoded error response.
func FromResponse(status int, resp HTTPErrorResponse) *TraefikerError {
	code := resp.Error.Code
	if code == "" {
		code = ErrAPICall
	}
	return &TraefikerError{
		Code:       code,
		Message:    resp.Error.Message,
		Details:    resp.Error.Details,
		Context:    resp.Context,
		HTTPStatus: status,
	}
}
