package db

import (
	"context"
	"fmt"
)

// MigrationStatus reports the schema version recorded by golang-migrate
type MigrationStatus struct {
	Version uint `db:"version" json:"version"`
	Dirty   bool `db:"dirty" json:"dirty"`
}

// GetMigrationStatus returns the current migration version and dirty flag
func (db *DB) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	query := `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`

	var status MigrationStatus
	if err := db.GetContext(ctx, &status, query); err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}

	return &status, nil
}
