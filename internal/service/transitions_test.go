package service

import (
	"testing"

	"traefiker/internal/db"
	"traefiker/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		current  db.ServiceStatus
		event    Event
		want     db.ServiceStatus
		conflict bool
	}{
		{"", EventCreate, db.StatusPulling, false},
		{db.StatusCreated, EventCreate, db.StatusCreated, true},

		{db.StatusPulling, EventAttach, db.StatusCreated, false},
		{db.StatusError, EventAttach, db.StatusCreated, false},
		{db.StatusRunning, EventAttach, db.StatusCreated, false},

		{db.StatusCreated, EventStart, db.StatusRunning, false},
		{db.StatusStopped, EventStart, db.StatusRunning, false},
		{db.StatusRunning, EventStart, db.StatusRunning, true},
		{db.StatusPulling, EventStart, db.StatusPulling, true},
		{db.StatusError, EventStart, db.StatusError, true},

		{db.StatusRunning, EventStop, db.StatusStopped, false},
		{db.StatusStopped, EventStop, db.StatusStopped, true},
		{db.StatusCreated, EventStop, db.StatusCreated, true},
		{db.StatusPulling, EventStop, db.StatusPulling, true},
		{db.StatusError, EventStop, db.StatusError, true},

		{db.StatusPulling, EventFail, db.StatusError, false},
		{db.StatusRunning, EventFail, db.StatusError, false},

		{db.StatusPulling, EventUpdate, db.StatusPulling, true},
		{db.StatusPulling, EventRecreate, db.StatusPulling, true},
		{db.StatusPulling, EventDelete, db.StatusPulling, true},
		{db.StatusError, EventUpdate, db.StatusError, false},
		{db.StatusStopped, EventRecreate, db.StatusStopped, false},
		{db.StatusError, EventDelete, db.StatusError, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.current)+"/"+string(tt.event), func(t *testing.T) {
			got, err := Transition("web", tt.current, tt.event)
			assert.Equal(t, tt.want, got)
			if tt.conflict {
				assert.True(t, errors.IsConflict(err), "expected conflict, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransitionUnknownEvent(t *testing.T) {
	got, err := Transition("web", db.StatusRunning, Event("restart"))
	assert.Equal(t, db.StatusRunning, got)
	assert.True(t, errors.IsInvalidRequest(err))
}
