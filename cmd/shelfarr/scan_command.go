package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shelfarr/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a library scan now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(func(client *apiClient, deps *directDeps) error {
				var summary *scanner.Summary
				var err error
				if client != nil {
					summary, err = client.scan()
				} else {
					summary, err = deps.Scanner.Scan(cmd.Context())
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scan %s finished in %s\n", summary.ScanID, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
				fmt.Fprintf(out, "Folders scanned:  %d\n", summary.FoldersScanned)
				fmt.Fprintf(out, "New queue items:  %d\n", summary.NewQueueItems)
				fmt.Fprintf(out, "Episodes updated: %d\n", summary.EpisodesUpdated)
				if summary.Errors > 0 {
					fmt.Fprintf(out, "Errors:           %d\n", summary.Errors)
				}
				return nil
			})
		},
	}
}
