package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/messagely/server/internal/app"
	"github.com/messagely/server/internal/config"
	"github.com/messagely/server/internal/log"
)

func main() {
	var (
		configPath string
		addr       string
		dbPath     string
		logLevel   string
	)

	root := &cobra.Command{
		Use:   "messagely-server",
		Short: "Direct messaging backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			bootLogger := log.New(logLevel)
			cfg, path, err := config.Load(bootLogger, configPath)
			if err != nil {
				return err
			}

			// Flags override file and environment values.
			if addr != "" {
				cfg.Addr = addr
			}
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting messagely server")

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := application.Run(ctx); err != nil {
				return err
			}

			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config file")
	root.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	root.Flags().StringVar(&dbPath, "db", "", "path to SQLite database file")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
