package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/prop-edge/internal/config"
)

// RequiredTables are created by migrations/001_initial.up.sql
var RequiredTables = []string{"quotes", "picks", "results", "grades", "edges", "metrics_snapshots"}

// Initialize creates a database connection pool and verifies the schema is migrated
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	missing, err := db.MissingTables(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(missing) > 0 && logger != nil {
		logger.WithField("tables", missing).Warn("Schema incomplete. Run migrations: migrate -path migrations -database \"$DSN\" up")
	}

	return db, nil
}

// MissingTables lists required tables absent from the public schema
func (db *DB) MissingTables(ctx context.Context) ([]string, error) {
	var missing []string
	for _, table := range RequiredTables {
		var exists bool
		err := db.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
