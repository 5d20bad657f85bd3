package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezkam/taskboard/internal/config"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence"
)

// app carries what every subcommand needs. Tests replace loadConfig and now.
type app struct {
	loadConfig func() (*config.CLIConfig, error)
	open       func(ctx context.Context, cfg config.StorageConfig) (persistence.Store, error)
	now        func() time.Time
}

func newApp() *app {
	return &app{
		loadConfig: config.LoadCLIConfig,
		open:       persistence.Open,
		now:        time.Now,
	}
}

// withStore loads configuration, opens the store and runs fn with it.
// migrate forces the schema migrations to run.
func (a *app) withStore(ctx context.Context, migrate bool, fn func(persistence.Store) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	storage := cfg.Storage
	if migrate {
		storage.AutoMigrate = true
	}

	store, err := a.open(ctx, storage)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.ErrorContext(ctx, "Failed to close store", "error", err)
		}
	}()
	return fn(store)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskctl",
		Short: "Operate the taskboard task store",
		Long: `taskctl manages the storage behind the taskboard server.

Storage is selected with the same environment variables the server reads:
TASKBOARD_STORAGE_TYPE (sqlite or postgres), TASKBOARD_SQLITE_PATH and
TASKBOARD_DB_DSN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
		},
	}
	root.AddCommand(newMigrateCmd(a), newSeedCmd(a), newStatsCmd(a))
	return root
}
