package service

import (
	"traefiker/internal/db"
	"traefiker/internal/errors"
)

// Event is a lifecycle input applied to a service's current status
type Event string

const (
	EventCreate   Event = "create"
	EventAttach   Event = "attach"
	EventStart    Event = "start"
	EventStop     Event = "stop"
	EventFail     Event = "fail"
	EventUpdate   Event = "update"
	EventRecreate Event = "recreate"
	EventDelete   Event = "delete"
)

// Transition returns the status a service moves to when event is applied in
// status current. The result is persisted only after the matching runtime
// side effect succeeds. name is used for error reporting.
func Transition(name string, current db.ServiceStatus, event Event) (db.ServiceStatus, error) {
	conflict := func() (db.ServiceStatus, error) {
		return current, errors.ServiceConflict(name, string(event), string(current))
	}

	switch event {
	case EventCreate:
		if current != "" {
			return conflict()
		}
		return db.StatusPulling, nil

	case EventAttach:
		return db.StatusCreated, nil

	case EventStart:
		switch current {
		case db.StatusCreated, db.StatusStopped:
			return db.StatusRunning, nil
		}
		return conflict()

	case EventStop:
		if current == db.StatusRunning {
			return db.StatusStopped, nil
		}
		return conflict()

	case EventFail:
		return db.StatusError, nil

	case EventUpdate, EventRecreate, EventDelete:
		if current == db.StatusPulling {
			return conflict()
		}
		return current, nil
	}

	return current, errors.InvalidRequest("unknown lifecycle event: " + string(event))
}
