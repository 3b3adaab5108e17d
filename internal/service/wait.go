package service

import (
	"context"
	"time"

	"traefiker/internal/db"
)

// Getter loads a service record by name
type Getter func(ctx context.Context, name string) (*Record, error)

// AwaitSettled polls a service until its background provisioning is over:
// a container is attached and the status is want (any status when want is
// empty), or the service failed. It is for callers that cannot Wait on the
// Manager itself, such as clients of a remote server.
func AwaitSettled(ctx context.Context, get Getter, name string, want db.ServiceStatus, interval time.Duration) (*Record, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		rec, err := get(ctx, name)
		if err != nil {
			return nil, err
		}
		if settled(rec, want) {
			return rec, nil
		}

		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-ticker.C:
		}
	}
}

func settled(rec *Record, want db.ServiceStatus) bool {
	switch rec.Status {
	case db.StatusError:
		return true
	case db.StatusPulling:
		return false
	}
	if rec.Container == nil {
		return false
	}
	return want == "" || rec.Status == want
}
