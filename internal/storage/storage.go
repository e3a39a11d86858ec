// Package storage opens the roster repository selected by configuration.
package storage

import (
	"context"
	"fmt"

	"spelling-bee/internal/config"
	"spelling-bee/internal/roster"
	"spelling-bee/internal/roster/postgres"
	"spelling-bee/internal/roster/sqlite"
)

func Open(ctx context.Context, cfg config.Config) (roster.Repository, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite, "":
		store, err := sqlite.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.NewStorage(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}
