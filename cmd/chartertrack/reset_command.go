package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chartertrack/internal/config"
	"chartertrack/internal/store"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all tracking data (backups, charters, events)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()

				if !force {
					fmt.Fprintf(out, "This deletes all tracking data in %s. Type 'yes' to continue: ", cfg.Store.DBPath)
					reader := bufio.NewReader(cmd.InOrStdin())
					answer, err := reader.ReadString('\n')
					if err != nil {
						return fmt.Errorf("read confirmation: %w", err)
					}
					if strings.TrimSpace(answer) != "yes" {
						fmt.Fprintln(out, "Aborted")
						return nil
					}
				}

				if err := st.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "Tracking data deleted")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
