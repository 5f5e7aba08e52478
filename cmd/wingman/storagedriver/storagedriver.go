// Package storagedriver opens the storage backend selected by the storage
// section of the wingman configuration.
package storagedriver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/wingman/pkg/config"
	"github.com/papercomputeco/wingman/pkg/storage"
	"github.com/papercomputeco/wingman/pkg/storage/inmemory"
	"github.com/papercomputeco/wingman/pkg/storage/postgres"
	"github.com/papercomputeco/wingman/pkg/storage/sqlite"
)

// Open returns the driver selected by cfg: PostgreSQL, then SQLite, then
// memory.
func Open(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (storage.Driver, error) {
	switch {
	case cfg.PostgresDSN != "":
		driver, err := postgres.NewDriver(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return driver, nil

	case cfg.SQLitePath != "":
		driver, err := sqlite.NewDriver(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		log.Info("using SQLite storage", "path", cfg.SQLitePath)
		return driver, nil

	default:
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}
}

// IsPersistent reports whether cfg names a database rather than memory.
func IsPersistent(cfg config.StorageConfig) bool {
	return cfg.PostgresDSN != "" || cfg.SQLitePath != ""
}
