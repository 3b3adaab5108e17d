package server

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"traefiker/internal/errors"
	"traefiker/internal/logger"

	"github.com/labstack/echo/v4"
)

// requestIDHeader echoes the request ID assigned by the request logger
func requestIDHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if reqID := GetRequestID(c); reqID != "" {
			c.Response().Header().Set(echo.HeaderXRequestID, reqID)
		}
		return next(c)
	}
}

// ErrorHandler writes every error as an HTTPErrorResponse
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.GetLogger(c).WithError(err).Error("Request error")
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(status)
		return
	}
	c.JSON(status, body)
}

func errorResponse(err error) (int, errors.HTTPErrorResponse) {
	var he *echo.HTTPError
	if !stderrors.As(err, &he) {
		return errors.ToResponse(err)
	}

	if body, ok := he.Message.(errors.HTTPErrorResponse); ok {
		return he.Code, body
	}

	code := errors.ErrInvalidRequest
	if he.Code >= http.StatusInternalServerError {
		code = errors.ErrInternal
	}
	return he.Code, errors.HTTPErrorResponse{
		Error: errors.ErrorInfo{
			Code:    code,
			Message: fmt.Sprint(he.Message),
		},
	}
}

// GetRequestID returns the ID the request logger assigned to the request
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(logger.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
