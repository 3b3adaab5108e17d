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

const imageColumns = `id, identifier, name, registry, repository, tag, digest, created_at`

// ImageRepository handles database operations for images
type ImageRepository struct {
	q sqlx.ExtContext
}

// NewImageRepository creates a new image repository
func NewImageRepository(q sqlx.ExtContext) *ImageRepository {
	return &ImageRepository{q: q}
}

// Create inserts an image. Images are immutable once stored.
func (r *ImageRepository) Create(ctx context.Context, image *Image) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO images (` + imageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		image.ID,
		image.Identifier,
		image.Name,
		image.Registry,
		image.Repository,
		image.Tag,
		image.Digest,
		image.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetByID returns an image by ID
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*Image, error) {
	return r.get(ctx, "id", id)
}

// GetByIdentifier returns an image by the identifier it was created from
func (r *ImageRepository) GetByIdentifier(ctx context.Context, identifier string) (*Image, error) {
	return r.get(ctx, "identifier", identifier)
}

func (r *ImageRepository) get(ctx context.Context, column, value string) (*Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE ` + column + ` = ?`

	image := &Image{}
	if err := sqlx.GetContext(ctx, r.q, image, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("image %q: %w", value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return image, nil
}
