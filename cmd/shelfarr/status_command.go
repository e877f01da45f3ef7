package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shelfarr/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(func(client *apiClient, deps *directDeps) error {
				out := cmd.OutOrStdout()

				var queueStats map[store.QueueStatus]int
				var databasePath string
				if client != nil {
					status, err := client.status()
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Daemon: running (pid %d)\n", status.PID)
					fmt.Fprintf(out, "Scan active: %s\n", yesNo(status.ScanActive))
					queueStats = status.Queue
					databasePath = status.DatabasePath
				} else {
					fmt.Fprintln(out, "Daemon: not running")
					stats, err := deps.Store.QueueStats(cmd.Context())
					if err != nil {
						return err
					}
					queueStats = stats
					databasePath = deps.Config.DatabasePath()
				}

				fmt.Fprintf(out, "Database: %s", databasePath)
				if info, err := os.Stat(databasePath); err == nil {
					fmt.Fprintf(out, " (%s)", humanize.IBytes(uint64(info.Size())))
				}
				fmt.Fprintln(out)

				rows := make([][]string, 0, len(queueStats))
				for _, status := range store.AllQueueStatuses() {
					if count, ok := queueStats[status]; ok && count > 0 {
						rows = append(rows, []string{string(status), fmt.Sprintf("%d", count)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
