package service

import (
	"context"
	"fmt"

	"traefiker/internal/db"
)

// Registrar appends caller-supplied environment overrides and redirect
// rules to a service. It never touches the container; callers recreate it.
type Registrar struct {
	store *db.Store
}

// NewRegistrar creates a registrar writing through store, usually a transaction
func NewRegistrar(store *db.Store) *Registrar {
	return &Registrar{store: store}
}

// AddEnvironment appends vars in order
func (r *Registrar) AddEnvironment(ctx context.Context, serviceID string, vars []EnvVar) error {
	for _, v := range vars {
		env := &db.EnvironmentVariable{ServiceID: serviceID, Key: v.Key, Value: v.Value, Source: db.EnvSourceOverride}
		if err := r.store.Environment.Create(ctx, env); err != nil {
			return fmt.Errorf("failed to add environment variable %s: %w", v.Key, err)
		}
	}
	return nil
}

// AddRedirects appends redirect rules in order
func (r *Registrar) AddRedirects(ctx context.Context, serviceID string, redirects []RedirectSpec) error {
	for _, spec := range redirects {
		redirect := &db.Redirect{
			ServiceID:   serviceID,
			Regex:       spec.Regex,
			Replacement: spec.Replacement,
			Permanent:   spec.Permanent,
		}
		if err := r.store.Redirects.Create(ctx, redirect); err != nil {
			return fmt.Errorf("failed to add redirect %s: %w", spec.Regex, err)
		}
	}
	return nil
}
