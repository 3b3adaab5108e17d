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

// ContainerInfoRepository handles database operations for container infos
type ContainerInfoRepository struct {
	q sqlx.ExtContext
}

// NewContainerInfoRepository creates a new container info repository
func NewContainerInfoRepository(q sqlx.ExtContext) *ContainerInfoRepository {
	return &ContainerInfoRepository{q: q}
}

// Create inserts a container info row
func (r *ContainerInfoRepository) Create(ctx context.Context, info *ContainerInfo) error {
	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO container_infos (id, container_id, name, network, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.q.ExecContext(ctx, query, info.ID, info.ContainerID, info.Name, info.Network, info.CreatedAt); err != nil {
		return fmt.Errorf("failed to create container info: %w", err)
	}
	return nil
}

// GetByID returns a container info by ID
func (r *ContainerInfoRepository) GetByID(ctx context.Context, id string) (*ContainerInfo, error) {
	query := `SELECT id, container_id, name, network, created_at FROM container_infos WHERE id = ?`

	info := &ContainerInfo{}
	if err := sqlx.GetContext(ctx, r.q, info, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("container info %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get container info: %w", err)
	}
	return info, nil
}

// Delete removes a container info row. Deleting a missing row is not an error.
func (r *ContainerInfoRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM container_infos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete container info: %w", err)
	}
	return nil
}
