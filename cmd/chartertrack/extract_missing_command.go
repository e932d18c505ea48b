package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chartertrack/internal/config"
	"chartertrack/internal/reports"
	"chartertrack/internal/store"
)

func newExtractMissingCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath string
		saveFailed bool
		sourceFlag string
	)

	cmd := &cobra.Command{
		Use:   "extract-missing",
		Short: "Recover missing charters from the backups they were last seen in",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger(false)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()

				items, err := st.MissingForExtraction(cmd.Context(), cfg.Reports.IgnoredParentPaths)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "No missing charters to extract")
					return nil
				}

				source, err := backupSource(cfg, logger, sourceFlag)
				if err != nil {
					return err
				}

				path := outputPath
				if path == "" {
					path = reports.TimestampedPath(cfg.Reports.Dir, "missing-charters", "zip")
				}

				result, err := reports.BuildRecoveryZip(cmd.Context(), source, items, path, logger)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Extracted %d of %d missing charters to %s\n",
					result.Extracted, len(items), result.OutputPath)
				if len(result.Failed) > 0 {
					fmt.Fprintf(out, "%d charter(s) could not be recovered\n", len(result.Failed))
					if saveFailed {
						failedPath := strings.TrimSuffix(path, ".zip") + ".failed.csv"
						if err := reports.WriteFailedCSV(failedPath, result.Failed); err != nil {
							return err
						}
						fmt.Fprintf(out, "Failure details written to %s\n", failedPath)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Recovery archive path")
	cmd.Flags().BoolVar(&saveFailed, "save-failed", false, "Write unrecoverable charters to a CSV next to the archive")
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Backup source for this run (azure or local)")
	return cmd
}
