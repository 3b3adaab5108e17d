package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EnvironmentRepository handles database operations for service environment variables
type EnvironmentRepository struct {
	q sqlx.ExtContext
}

// NewEnvironmentRepository creates a new environment variable repository
func NewEnvironmentRepository(q sqlx.ExtContext) *EnvironmentRepository {
	return &EnvironmentRepository{q: q}
}

// Create appends an environment variable to its service. Variables without
// a source are recorded as overrides.
func (r *EnvironmentRepository) Create(ctx context.Context, env *EnvironmentVariable) error {
	if env.ID == "" {
		env.ID = uuid.New().String()
	}
	if env.Source == "" {
		env.Source = EnvSourceOverride
	}
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO environment_variables (id, service_id, key, value, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.q.ExecContext(ctx, query, env.ID, env.ServiceID, env.Key, env.Value, env.Source, env.CreatedAt); err != nil {
		return fmt.Errorf("failed to create environment variable: %w", err)
	}
	return nil
}

// ListByService returns all of a service's variables in insertion order
func (r *EnvironmentRepository) ListByService(ctx context.Context, serviceID string) ([]EnvironmentVariable, error) {
	query := `
		SELECT id, service_id, key, value, source, created_at
		FROM environment_variables
		WHERE service_id = ?
		ORDER BY rowid ASC
	`

	vars := []EnvironmentVariable{}
	if err := sqlx.SelectContext(ctx, r.q, &vars, query, serviceID); err != nil {
		return nil, fmt.Errorf("failed to list environment variables: %w", err)
	}
	return vars, nil
}

// ListBySource returns the service's variables from one source in insertion order
func (r *EnvironmentRepository) ListBySource(ctx context.Context, serviceID string, source EnvSource) ([]EnvironmentVariable, error) {
	query := `
		SELECT id, service_id, key, value, source, created_at
		FROM environment_variables
		WHERE service_id = ? AND source = ?
		ORDER BY rowid ASC
	`

	vars := []EnvironmentVariable{}
	if err := sqlx.SelectContext(ctx, r.q, &vars, query, serviceID, source); err != nil {
		return nil, fmt.Errorf("failed to list %s environment variables: %w", source, err)
	}
	return vars, nil
}

// ReplaceImageEnv swaps the service's image variables for vars, keeping
// their order. Overrides are left alone.
func (r *EnvironmentRepository) ReplaceImageEnv(ctx context.Context, serviceID string, vars []EnvironmentVariable) error {
	query := `DELETE FROM environment_variables WHERE service_id = ? AND source = ?`
	if _, err := r.q.ExecContext(ctx, query, serviceID, EnvSourceImage); err != nil {
		return fmt.Errorf("failed to clear image environment variables: %w", err)
	}
	for i := range vars {
		vars[i].ID = ""
		vars[i].ServiceID = serviceID
		vars[i].Source = EnvSourceImage
		if err := r.Create(ctx, &vars[i]); err != nil {
			return err
		}
	}
	return nil
}
