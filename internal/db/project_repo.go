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

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	q sqlx.ExtContext
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(q sqlx.ExtContext) *ProjectRepository {
	return &ProjectRepository{q: q}
}

// Create inserts a project, assigning an ID when empty
func (r *ProjectRepository) Create(ctx context.Context, project *Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := r.q.ExecContext(ctx, query, project.ID, project.Name, project.CreatedAt); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByName returns a project by its unique name
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*Project, error) {
	return r.get(ctx, "name", name)
}

// GetByID returns a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*Project, error) {
	return r.get(ctx, "id", id)
}

func (r *ProjectRepository) get(ctx context.Context, column, value string) (*Project, error) {
	query := `SELECT id, name, created_at FROM projects WHERE ` + column + ` = ?`

	project := &Project{}
	if err := sqlx.GetContext(ctx, r.q, project, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %q: %w", value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// List returns all projects ordered by name
func (r *ProjectRepository) List(ctx context.Context) ([]*Project, error) {
	query := `SELECT id, name, created_at FROM projects ORDER BY name ASC`

	projects := []*Project{}
	if err := sqlx.SelectContext(ctx, r.q, &projects, query); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}
