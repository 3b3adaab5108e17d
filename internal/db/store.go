package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Store groups the repositories behind one query handle. A Store obtained
// from WithinTx routes every repository through the same transaction.
type Store struct {
	db   *DB
	inTx bool

	Projects       *ProjectRepository
	Images         *ImageRepository
	Services       *ServiceRepository
	ContainerInfos *ContainerInfoRepository
	Environment    *EnvironmentRepository
	Redirects      *RedirectRepository
}

// NewStore creates a store backed by the database connection pool
func NewStore(database *DB) *Store {
	return newStore(database, database, false)
}

func newStore(database *DB, q sqlx.ExtContext, inTx bool) *Store {
	return &Store{
		db:             database,
		inTx:           inTx,
		Projects:       NewProjectRepository(q),
		Images:         NewImageRepository(q),
		Services:       NewServiceRepository(q),
		ContainerInfos: NewContainerInfoRepository(q),
		Environment:    NewEnvironmentRepository(q),
		Redirects:      NewRedirectRepository(q),
	}
}

// WithinTx runs fn as one unit of work. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(newStore(s.db, tx, true))
	})
}

// DB returns the underlying database
func (s *Store) DB() *DB {
	return s.db
}
