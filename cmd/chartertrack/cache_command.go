package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chartertrack/internal/services/azure"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the backup download cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached backup archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			entries, err := azure.ListCache(cfg.Backups.CacheDir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}

			var total int64
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				total += entry.Size
				rows = append(rows, []string{entry.Name, humanize.Bytes(uint64(entry.Size))})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Backup", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d archive(s), %s in %s\n", len(entries), humanize.Bytes(uint64(total)), cfg.Backups.CacheDir)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached backup archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			removed, freed, err := azure.ClearCache(cfg.Backups.CacheDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d archive(s), freed %s\n", removed, humanize.Bytes(uint64(freed)))
			return nil
		},
	}
}
