package logger

import (
	"io"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// Echo context keys set by RequestLogger
const (
	RequestIDKey = "request_id"
	loggerKey    = "logger"
)

// Logger is the global logger instance. It writes to stderr since stdout
// carries command output.
var Logger = New(os.Stderr, os.Getenv("TRAEFIKER_ENV") == "production")

// Fields is an alias for logrus.Fields
type Fields = logrus.Fields

// New builds a logger writing to out at info level, as JSON in production
// and as timestamped text otherwise
func New(out io.Writer, production bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)

	if production {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		return l
	}
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return l
}

// SetLevel sets the global level by name; unknown names fall back to info
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)
}

// ForService returns a logger scoped to one service lifecycle operation.
func ForService(name, operation string) *logrus.Entry {
	return Logger.WithFields(Fields{
		"service":   name,
		"operation": operation,
	})
}

func WithFields(fields Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}

func Info(msg string) {
	Logger.Info(msg)
}

// RequestLogger assigns every request an ID, stores a request-scoped entry
// in the echo context and logs the outcome once the response is written.
// Errors are handed to the echo error handler here so the logged status is
// the one the client saw.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			reqID := xid.New().String()

			req := c.Request()
			entry := Logger.WithFields(Fields{
				RequestIDKey: reqID,
				"method":     req.Method,
				"path":       req.URL.Path,
				"ip":         c.RealIP(),
				"user_agent": req.UserAgent(),
			})
			c.Set(RequestIDKey, reqID)
			c.Set(loggerKey, entry)

			err := next(c)
			if err != nil {
				c.Error(err)
				entry = entry.WithError(err)
			}

			latency := time.Since(start)
			status := c.Response().Status
			entry = entry.WithFields(Fields{
				"status":     status,
				"latency_ms": latency.Milliseconds(),
				"latency":    latency.String(),
			})
			if name := c.Param("name"); name != "" {
				entry = entry.WithField("resource", name)
			}

			level, msg := outcome(status)
			entry.Log(level, msg)
			return nil
		}
	}
}

// outcome picks the level and message a finished request is logged with
func outcome(status int) (logrus.Level, string) {
	switch {
	case status >= 500:
		return logrus.ErrorLevel, "Request failed"
	case status >= 400:
		return logrus.WarnLevel, "Request error"
	case status >= 300:
		return logrus.InfoLevel, "Request redirected"
	default:
		return logrus.InfoLevel, "Request completed"
	}
}

// GetLogger returns the request-scoped entry, or a global one tagged with the
// request ID when RequestLogger did not run
func GetLogger(c echo.Context) *logrus.Entry {
	if entry, ok := c.Get(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	if reqID, ok := c.Get(RequestIDKey).(string); ok {
		return Logger.WithField(RequestIDKey, reqID)
	}
	return logrus.NewEntry(Logger)
}
