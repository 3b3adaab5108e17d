package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docker/docker/errdefs"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", errdefs.NotFound(errors.New("No such container: web")), ErrorTypeContainerNotFound},
		{"conflict", errdefs.Conflict(errors.New("name already in use")), ErrorTypeConflict},
		{"forbidden", errdefs.Forbidden(errors.New("denied")), ErrorTypePermissionDenied},
		{"deadline", fmt.Errorf("create: %w", context.DeadlineExceeded), ErrorTypeTimeout},
		{"pull denied", errors.New("pull access denied for private/img"), ErrorTypeImageNotFound},
		{"network", errors.New("network traefiker not found in scope"), ErrorTypeNetworkError},
		{"other", errors.New("boom"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(wrapError("inspect", "web", errdefs.NotFound(errors.New("gone")))))
	assert.True(t, IsNotFound(errdefs.NotFound(errors.New("gone"))))
	assert.False(t, IsNotFound(wrapError("start", "web", errors.New("boom"))))
	assert.False(t, IsNotFound(NewContainerError(ErrorTypeImageNotFound, "pull", "image missing", nil)))
}

func TestContainerErrorMessage(t *testing.T) {
	err := wrapError("start", "abc123", errors.New(strings.Repeat("x", 600)))

	msg := err.Error()
	assert.Contains(t, msg, "failed to start container")
	assert.Contains(t, msg, "container=abc123")
	assert.Contains(t, msg, "operation=start")
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.ErrorIs(t, fmt.Errorf("outer: %w", err), err.Underlying)
}

func TestErrorHandlerGetUserMessage(t *testing.T) {
	h := NewErrorHandler()

	plain := errors.New("plain failure")
	assert.Equal(t, "plain failure", h.GetUserMessage(plain))
	assert.False(t, h.IsRecoverable(plain))

	runtimeErr := NewContainerError(ErrorTypeRuntimeNotFound, "ping", "docker daemon is not reachable", nil)
	msg := h.GetUserMessage(fmt.Errorf("startup: %w", runtimeErr))
	assert.Contains(t, msg, "docker daemon is not reachable")
	assert.Contains(t, msg, "docker info")
	assert.True(t, h.IsRecoverable(runtimeErr))
}
