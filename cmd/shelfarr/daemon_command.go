package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shelfarr/internal/daemon"
	"shelfarr/internal/logging"
	"shelfarr/internal/organizer"
	"shelfarr/internal/rules"
	"shelfarr/internal/scanner"
	"shelfarr/internal/store"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the shelfarr daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger := logging.New(cfg.Logging.Format, cfg.Logging.Level)

			s, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			engine := rules.NewEngine(s, logger)
			org := organizer.New(cfg, s, engine, logger)
			movies, games := buildCatalogs(cfg)
			sc := scanner.New(cfg, s, engine, org, movies, games, nil, logger)

			d, err := daemon.New(cfg, s, sc, logger)
			if err != nil {
				_ = s.Close()
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shelfarr daemon listening on %s\n", d.APIAddr())

			<-signalCtx.Done()
			logger.Info("shelfarr daemon shutting down")
			return nil
		},
	}
}
