package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezkam/taskboard/internal/application/task"
	"github.com/rezkam/taskboard/internal/infrastructure/http/handler"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence"
)

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print task counts by status and overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), false, func(store persistence.Store) error {
				svc := task.NewService(store, task.NewValidator(a.now))
				stats, err := svc.Statistics(cmd.Context())
				if err != nil {
					return err
				}
				res := handler.MapStatistics(stats)

				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(res)
				}

				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Total\t%d\n", res.Total)
				fmt.Fprintf(tw, "Pending\t%d\n", res.Pending)
				fmt.Fprintf(tw, "In Progress\t%d\n", res.InProgress)
				fmt.Fprintf(tw, "Completed\t%d\n", res.Completed)
				fmt.Fprintf(tw, "Overdue\t%d\n", res.Overdue)
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
