package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chartertrack/internal/config"
	"chartertrack/internal/store"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show overall tracking statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				stats, err := st.Stats(cmd.Context(), cfg.Reports.IgnoredParentPaths)
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Processed backups", strconv.Itoa(stats.ProcessedBackups)},
					{"Tracked charters", strconv.Itoa(stats.TotalCharters)},
					{"Currently missing", strconv.Itoa(stats.MissingCharters)},
					{"Disappearance events", strconv.Itoa(stats.DisappearanceEvents)},
					{"Listing discrepancies", strconv.Itoa(stats.Discrepancies)},
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Metric", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				if len(cfg.Reports.IgnoredParentPaths) > 0 {
					fmt.Fprintf(out, "Ignoring %d parent path(s) per configuration\n", len(cfg.Reports.IgnoredParentPaths))
				}
				return nil
			})
		},
	}
}
