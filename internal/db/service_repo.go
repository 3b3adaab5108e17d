package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const serviceColumns = `id, name, status, image_id, project_id, owner, hosts, container_info_id, created_at, updated_at`

// ServiceFilter narrows service listings
type ServiceFilter struct {
	ProjectID string
	Status    ServiceStatus
}

func (f ServiceFilter) where() (string, []interface{}) {
	clause := " WHERE 1=1"
	args := []interface{}{}
	if f.ProjectID != "" {
		clause += " AND project_id = ?"
		args = append(args, f.ProjectID)
	}
	if f.Status != "" {
		clause += " AND status = ?"
		args = append(args, f.Status)
	}
	return clause, args
}

// ServiceRepository handles database operations for services
type ServiceRepository struct {
	q sqlx.ExtContext
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(q sqlx.ExtContext) *ServiceRepository {
	return &ServiceRepository{q: q}
}

// Create inserts a service
func (r *ServiceRepository) Create(ctx context.Context, svc *Service) error {
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = now
	}
	svc.UpdatedAt = now

	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		svc.ID,
		svc.Name,
		svc.Status,
		svc.ImageID,
		svc.ProjectID,
		svc.Owner,
		svc.Hosts,
		svc.ContainerInfoID,
		svc.CreatedAt,
		svc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// GetByName returns a service by its unique name
func (r *ServiceRepository) GetByName(ctx context.Context, name string) (*Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE name = ?`

	svc := &Service{}
	if err := sqlx.GetContext(ctx, r.q, svc, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("service %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

// List returns services matching the filter, oldest first
func (r *ServiceRepository) List(ctx context.Context, filter ServiceFilter) ([]*Service, error) {
	where, args := filter.where()
	query := `SELECT ` + serviceColumns + ` FROM services` + where + ` ORDER BY created_at ASC, rowid ASC`

	services := []*Service{}
	if err := sqlx.SelectContext(ctx, r.q, &services, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// ListPage returns one page of services matching the filter and the total count
func (r *ServiceRepository) ListPage(ctx context.Context, filter ServiceFilter, opts PaginationOptions) ([]*Service, int, error) {
	if err := opts.Validate(); err != nil {
		return nil, 0, err
	}

	where, args := filter.where()

	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, `SELECT COUNT(*) FROM services`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	query := `SELECT ` + serviceColumns + ` FROM services` + where + ` ` + opts.BuildOrderClause() + ` ` + opts.BuildLimitClause()
	services := []*Service{}
	if err := sqlx.SelectContext(ctx, r.q, &services, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}
	return services, total, nil
}

// Update persists every mutable column of the service
func (r *ServiceRepository) Update(ctx context.Context, svc *Service) error {
	svc.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE services
		SET status = ?, image_id = ?, owner = ?, hosts = ?, container_info_id = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.q.ExecContext(ctx, query,
		svc.Status,
		svc.ImageID,
		svc.Owner,
		svc.Hosts,
		svc.ContainerInfoID,
		svc.UpdatedAt,
		svc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return expectOneRow(result, "service", svc.Name)
}

// UpdateStatus persists only the status column
func (r *ServiceRepository) UpdateStatus(ctx context.Context, id string, status ServiceStatus) error {
	query := `UPDATE services SET status = ?, updated_at = ? WHERE id = ?`
	result, err := r.q.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update service status: %w", err)
	}
	return expectOneRow(result, "service", id)
}

// Delete removes a service. Environment variables and redirects cascade.
func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return expectOneRow(result, "service", id)
}

func expectOneRow(result sql.Result, kind, key string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
	}
	return nil
}
