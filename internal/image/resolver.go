// Package image resolves caller-supplied image identifiers into stored Image records.
package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"traefiker/internal/db"
	"traefiker/internal/logger"

	"github.com/distribution/reference"
)

// DefaultTag is applied when an identifier names neither a tag nor a digest
const DefaultTag = "latest"

// Repository is the storage the resolver reads and writes
type Repository interface {
	GetByIdentifier(ctx context.Context, identifier string) (*db.Image, error)
	Create(ctx context.Context, image *db.Image) error
}

// Resolve returns the image stored under identifier, creating it on first use.
// Resolution does not check that the image exists in any registry.
func Resolve(ctx context.Context, repo Repository, identifier string) (*db.Image, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("image identifier cannot be empty")
	}

	existing, err := repo.GetByIdentifier(ctx, identifier)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	img := Parse(identifier)
	if err := repo.Create(ctx, img); err != nil {
		// Another service may have stored the same identifier concurrently.
		if db.IsUniqueViolation(err) {
			return repo.GetByIdentifier(ctx, identifier)
		}
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"identifier": identifier,
		"image":      img.Name,
	}).Debug("Resolved new image")

	return img, nil
}

// Parse fills the canonical fields of an image from its identifier.
// Identifiers that are not valid references keep the identifier as their name.
func Parse(identifier string) *db.Image {
	img := &db.Image{
		Identifier: identifier,
		Name:       identifier,
	}

	named, err := reference.ParseNormalizedNamed(identifier)
	if err != nil {
		return img
	}

	img.Registry = reference.Domain(named)
	img.Repository = reference.Path(named)

	if digested, ok := named.(reference.Digested); ok {
		img.Digest = digested.Digest().String()
	}
	if tagged, ok := named.(reference.Tagged); ok {
		img.Tag = tagged.Tag()
	}
	if img.Tag == "" && img.Digest == "" {
		named = reference.TagNameOnly(named)
		img.Tag = DefaultTag
	}

	img.Name = named.String()
	return img
}
