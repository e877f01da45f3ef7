package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect library organization settings",
	}

	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the persisted organization settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBackend(func(client *apiClient, deps *directDeps) error {
				var view apiSettings
				if client != nil {
					settings, err := client.settings()
					if err != nil {
						return err
					}
					view = *settings
				} else {
					settings, err := deps.Store.Settings(cmd.Context())
					if err != nil {
						return err
					}
					view = apiSettings{
						LibraryDir:      settings.LibraryDir,
						MoviesDir:       settings.MoviesDir,
						TVDir:           settings.TVDir,
						GamesDir:        settings.GamesDir,
						AutoOrganize:    settings.AutoOrganize,
						ReplaceExisting: settings.ReplaceExisting,
						ExtractArchives: settings.ExtractArchives,
						DeleteArchives:  settings.DeleteArchives,
						ReverseIndexing: settings.ReverseIndexing,
						ScanInterval:    settings.ScanInterval,
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Library directory:  %s\n", view.LibraryDir)
				if view.MoviesDir != "" {
					fmt.Fprintf(out, "Movies directory:   %s\n", view.MoviesDir)
				}
				if view.TVDir != "" {
					fmt.Fprintf(out, "TV directory:       %s\n", view.TVDir)
				}
				if view.GamesDir != "" {
					fmt.Fprintf(out, "Games directory:    %s\n", view.GamesDir)
				}
				fmt.Fprintf(out, "Auto organize:      %s\n", yesNo(view.AutoOrganize))
				fmt.Fprintf(out, "Replace existing:   %s\n", yesNo(view.ReplaceExisting))
				fmt.Fprintf(out, "Extract archives:   %s\n", yesNo(view.ExtractArchives))
				fmt.Fprintf(out, "Delete archives:    %s\n", yesNo(view.DeleteArchives))
				fmt.Fprintf(out, "Reverse indexing:   %s\n", yesNo(view.ReverseIndexing))
				fmt.Fprintf(out, "Scan interval:      %s\n", view.ScanInterval)
				return nil
			})
		},
	}
}
