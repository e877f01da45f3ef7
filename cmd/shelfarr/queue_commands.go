package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shelfarr/internal/media"
	"shelfarr/internal/store"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the organize queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueProcessCommand(ctx))
	queueCmd.AddCommand(newQueueSkipCommand(ctx))
	queueCmd.AddCommand(newQueueDeleteCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List organize queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(func(client *apiClient, deps *directDeps) error {
				var items []queueItem
				if client != nil {
					listed, err := client.queueList(statusFilter)
					if err != nil {
						return err
					}
					items = listed
				} else {
					var statuses []store.QueueStatus
					if statusFilter != "" {
						status, ok := store.ParseQueueStatus(statusFilter)
						if !ok {
							return fmt.Errorf("unknown queue status %q", statusFilter)
						}
						statuses = append(statuses, status)
					}
					stored, err := deps.Store.ListQueueItems(cmd.Context(), statuses...)
					if err != nil {
						return err
					}
					for _, item := range stored {
						items = append(items, queueItem{
							ID:          item.ID,
							FolderPath:  item.FolderPath,
							ContentType: string(item.ContentType),
							Title:       item.Detected.Title,
							Year:        item.Detected.Year,
							Status:      string(item.Status),
							CreatedAt:   item.CreatedAt,
						})
					}
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					title := item.Title
					if item.Year > 0 {
						title = fmt.Sprintf("%s (%d)", title, item.Year)
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						title,
						media.ContentType(item.ContentType).Label(),
						item.Status,
						humanize.Time(item.CreatedAt),
						item.FolderPath,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Type", "Status", "Queued", "Folder"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by queue status")
	return cmd
}

func newQueueProcessCommand(ctx *commandContext) *cobra.Command {
	var title string
	var year, season, episode int
	var platform string

	cmd := &cobra.Command{
		Use:   "process <itemID>",
		Short: "Organize a queued folder with confirmed metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			return ctx.withBackend(func(client *apiClient, deps *directDeps) error {
				var item *queueItem
				if client != nil {
					selections := map[string]any{}
					if title != "" {
						selections["title"] = title
					}
					if year > 0 {
						selections["year"] = year
					}
					if season > 0 {
						selections["season"] = season
					}
					if episode > 0 {
						selections["episode"] = episode
					}
					if platform != "" {
						selections["platform"] = platform
					}
					processed, err := client.queueProcess(id, selections)
					if err != nil {
						return err
					}
					item = processed
				} else {
					processed, err := deps.Scanner.ProcessQueueItem(cmd.Context(), id, media.Descriptor{
						Title:    title,
						Year:     year,
						Season:   season,
						Episode:  episode,
						Platform: platform,
					})
					if err != nil {
						return err
					}
					item = &queueItem{ID: processed.ID, Title: processed.Detected.Title, Status: string(processed.Status)}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d (%s) is now %s\n", item.ID, item.Title, item.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Confirmed title")
	cmd.Flags().IntVar(&year, "year", 0, "Confirmed release year")
	cmd.Flags().IntVar(&season, "season", 0, "Confirmed season number")
	cmd.Flags().IntVar(&episode, "episode", 0, "Confirmed episode number")
	cmd.Flags().StringVar(&platform, "platform", "", "Confirmed game platform")
	return cmd
}

func newQueueSkipCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <itemID>",
		Short: "Mark a pending queue item skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withBackend(func(client *apiClient, deps *directDeps) error {
				if client != nil {
					if _, err := client.queueSkip(id); err != nil {
						return err
					}
				} else {
					if _, err := deps.Scanner.SkipQueueItem(cmd.Context(), id); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d skipped\n", id)
				return nil
			})
		},
	}
}

func newQueueDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <itemID>",
		Short: "Remove a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withBackend(func(client *apiClient, deps *directDeps) error {
				if client != nil {
					if err := client.queueDelete(id); err != nil {
						return err
					}
				} else {
					if err := deps.Scanner.DeleteQueueItem(cmd.Context(), id); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d deleted\n", id)
				return nil
			})
		},
	}
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}
