package main

import (
	"fmt"
	"time"

	searchlogcmd "github.com/goliatone/go-manual/internal/commands/searchlogs"
	"github.com/spf13/cobra"
)

func (a *app) cleanupCommand() *cobra.Command {
	var olderThan time.Duration
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "cleanup-search-logs",
		Short: "Remove search log entries older than the retention window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, logger, err := a.module(cmd.Context())
			if err != nil {
				return err
			}
			defer module.Close()

			out := cmd.OutOrStdout()
			handler := searchlogcmd.NewCleanupHandler(module.Catalog(), logger,
				searchlogcmd.CleanupWithRetention(a.cfg.Search.LogRetention),
				searchlogcmd.CleanupWithReporter(func(removed int, dryRun bool) {
					fmt.Fprintf(out, "removed=%d dry_run=%t\n", removed, dryRun)
				}),
			)
			return dispatch(cmd.Context(), handler, searchlogcmd.CleanupSearchLogsCommand{OlderThan: olderThan, DryRun: dryRun})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention window (defaults to search.log_retention)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count rows without deleting")
	return cmd
}
