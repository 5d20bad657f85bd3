package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezkam/taskboard/internal/infrastructure/persistence"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), true, func(store persistence.Store) error {
				if err := store.Ping(cmd.Context()); err != nil {
					return fmt.Errorf("store unreachable after migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
				return nil
			})
		},
	}
}
