// Package persistence selects a task store backend from configuration.
package persistence

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/config"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence/sqlite"
)

// Store is what the binaries need from a storage backend.
type Store interface {
	task.Repository
	Ping(ctx context.Context) error
	io.Closer
}

// Open opens the backend selected by cfg.Type, migrating it first when
// cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case config.StoragePostgres:
		store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,
			AutoMigrate:     cfg.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, sqlite.Config{
			Path:        cfg.SQLitePath,
			AutoMigrate: cfg.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
