package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"chartertrack/internal/config"
	"chartertrack/internal/store"
	"chartertrack/internal/tracker"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var verbose bool
	var sourceOverride string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Process pending backups and update charter tracking state",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger(verbose)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				source, err := backupSource(cfg, logger, sourceOverride)
				if err != nil {
					return err
				}

				t := tracker.New(st, cfg, logger)
				runner := tracker.NewRunner(t, source, st, cfg, logger)
				summary, err := runner.Run(cmd.Context())
				if err != nil {
					return err
				}

				printSyncSummary(cmd, summary)
				if len(summary.Failures) > 0 {
					return fmt.Errorf("%d of %d backups failed; they will be retried on the next run",
						len(summary.Failures), summary.Selected)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().StringVar(&sourceOverride, "source", "", "Backup source for this run (azure or local)")
	return cmd
}

func printSyncSummary(cmd *cobra.Command, summary *tracker.RunSummary) {
	out := cmd.OutOrStdout()

	if summary.Selected == 0 {
		fmt.Fprintf(out, "Nothing to do: %d backups available, all sampled backups already processed\n", summary.Available)
		return
	}

	if len(summary.Processed) > 0 {
		rows := make([][]string, 0, len(summary.Processed))
		for _, stats := range summary.Processed {
			rows = append(rows, []string{
				stats.Filename,
				stats.Date.Format("2006-01-02 15:04"),
				strconv.Itoa(stats.CharterCount),
				strconv.Itoa(stats.Appeared),
				strconv.Itoa(stats.Disappeared),
				strconv.Itoa(stats.Reappeared),
				strconv.Itoa(stats.Discrepancies),
				stats.Elapsed.Round(time.Millisecond).String(),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Backup", "Date", "Charters", "Appeared", "Disappeared", "Reappeared", "Discrepancies", "Elapsed"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
		))
	}

	for _, failure := range summary.Failures {
		fmt.Fprintf(out, "Failed: %s: %v\n", failure.Filename, failure.Err)
	}
	fmt.Fprintf(out, "Processed %d of %d pending backups (%d available)\n",
		len(summary.Processed), summary.Selected, summary.Available)
}
