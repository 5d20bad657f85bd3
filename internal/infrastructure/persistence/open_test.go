package persistence_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskboard/internal/config"
	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := persistence.Open(ctx, config.StorageConfig{
		Type:        config.StorageSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "tasks.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Ping(ctx))
	_, err = store.CreateTask(ctx, &domain.Task{Title: "Opened", Status: domain.TaskStatusPending})
	assert.NoError(t, err)
}

func TestOpen_UnknownType(t *testing.T) {
	_, err := persistence.Open(context.Background(), config.StorageConfig{Type: "mysql"})
	assert.ErrorContains(t, err, "unsupported storage type")
}

func TestOpen_PostgresBadDSN(t *testing.T) {
	_, err := persistence.Open(context.Background(), config.StorageConfig{
		Type: config.StoragePostgres,
		DSN:  "not a dsn ::",
	})
	assert.Error(t, err)
}
