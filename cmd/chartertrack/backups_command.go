package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chartertrack/internal/config"
	"chartertrack/internal/store"
)

func newBackupsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List known backups and their processing state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()

				backups, err := st.Backups(cmd.Context())
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Fprintln(out, "No backups recorded; run `chartertrack sync` first")
					return nil
				}

				rows := make([][]string, 0, len(backups))
				for _, b := range backups {
					seconds := ""
					if b.ProcessingTime > 0 {
						seconds = fmt.Sprintf("%.1fs", b.ProcessingTime)
					}
					rows = append(rows, []string{
						b.Filename,
						b.BackupDate.Format("2006-01-02 15:04"),
						yesNo(b.Processed()),
						strconv.FormatInt(b.CharterCount, 10),
						seconds,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Backup", "Date", "Processed", "Charters", "Time"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}
