package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/config"
	"github.com/cory-johannsen/chronicle/internal/storage"
	"github.com/cory-johannsen/chronicle/internal/storage/postgres"
	"github.com/cory-johannsen/chronicle/internal/storage/sqlite"
)

// openRepository opens the snapshot backend selected by storage.driver. The
// returned func releases it.
func openRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.SnapshotRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database, logger.Named("postgres"))
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewSnapshotRepository(pool.DB(), logger.Named("snapshots")), pool.Close, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath, logger.Named("snapshots"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing sqlite store", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
