// Package storage opens the repository manager selected by configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/memory"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
)

// Open connects to the configured store and brings its schema up to date.
// The caller owns the returned manager and must Close it.
func Open(ctx context.Context, cfg *config.Config) (repomanager.RepositoryManager, error) {
	var rm repomanager.RepositoryManager

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager(db)
	case config.DriverMemory:
		rm = memory.NewManager()
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return rm, nil
}
