package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RedirectRepository handles database operations for service redirects
type RedirectRepository struct {
	q sqlx.ExtContext
}

// NewRedirectRepository creates a new redirect repository
func NewRedirectRepository(q sqlx.ExtContext) *RedirectRepository {
	return &RedirectRepository{q: q}
}

// Create appends a redirect to its service
func (r *RedirectRepository) Create(ctx context.Context, redirect *Redirect) error {
	if redirect.ID == "" {
		redirect.ID = uuid.New().String()
	}
	if redirect.CreatedAt.IsZero() {
		redirect.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO redirects (id, service_id, regex, replacement, permanent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		redirect.ID,
		redirect.ServiceID,
		redirect.Regex,
		redirect.Replacement,
		redirect.Permanent,
		redirect.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create redirect: %w", err)
	}
	return nil
}

// ListByService returns a service's redirects in insertion order
func (r *RedirectRepository) ListByService(ctx context.Context, serviceID string) ([]Redirect, error) {
	query := `
		SELECT id, service_id, regex, replacement, permanent, created_at
		FROM redirects
		WHERE service_id = ?
		ORDER BY rowid ASC
	`

	redirects := []Redirect{}
	if err := sqlx.SelectContext(ctx, r.q, &redirects, query, serviceID); err != nil {
		return nil, fmt.Errorf("failed to list redirects: %w", err)
	}
	return redirects, nil
}
