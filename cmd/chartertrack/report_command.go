package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chartertrack/internal/config"
	"chartertrack/internal/reports"
	"chartertrack/internal/store"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		save       bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List charters currently missing from the latest backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()

				missing, err := st.MissingCharters(cmd.Context(), cfg.Reports.IgnoredParentPaths, 0)
				if err != nil {
					return err
				}
				if len(missing) == 0 {
					fmt.Fprintln(out, "No missing charters")
					return nil
				}

				shown := missing
				if limit > 0 && len(shown) > limit {
					shown = shown[:limit]
				}
				rows := make([][]string, 0, len(shown))
				for _, m := range shown {
					rows = append(rows, []string{
						m.Path,
						m.ParentPath,
						m.LastSeenFile,
						m.LastSeenDate.Format("2006-01-02"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Path", "Parent", "Last seen in", "Last seen"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				if len(shown) < len(missing) {
					fmt.Fprintf(out, "Showing %d of %d missing charters (use --limit 0 for all)\n", len(shown), len(missing))
				} else {
					fmt.Fprintf(out, "%d missing charter(s)\n", len(missing))
				}

				if save || outputPath != "" {
					path := outputPath
					if path == "" {
						path = reports.TimestampedPath(cfg.Reports.Dir, "missing-charters", "csv")
					}
					if err := reports.WriteMissingCSV(path, missing); err != nil {
						return err
					}
					fmt.Fprintf(out, "Report written to %s\n", path)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to display (0 shows all)")
	cmd.Flags().BoolVar(&save, "save", false, "Also write the full report as CSV")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "CSV output path (implies --save)")
	return cmd
}

func newParentReportCommand(ctx *commandContext) *cobra.Command {
	var (
		save       bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "parent-report",
		Short: "Aggregate missing charters per parent collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()

				groups, err := st.MissingByParent(cmd.Context(), cfg.Reports.IgnoredParentPaths)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					fmt.Fprintln(out, "No missing charters")
					return nil
				}

				rows := make([][]string, 0, len(groups))
				for _, g := range groups {
					parent := g.ParentPath
					if parent == "" {
						parent = "(root)"
					}
					rows = append(rows, []string{
						parent,
						strconv.Itoa(g.MissingCount),
						strconv.Itoa(g.TotalCount),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Parent", "Missing", "Total"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))

				if save || outputPath != "" {
					path := outputPath
					if path == "" {
						path = reports.TimestampedPath(cfg.Reports.Dir, "missing-by-parent", "csv")
					}
					if err := reports.WriteParentCSV(path, groups); err != nil {
						return err
					}
					fmt.Fprintf(out, "Report written to %s\n", path)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Also write the aggregation as CSV")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "CSV output path")
	return cmd
}
