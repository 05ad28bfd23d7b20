package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/go-native-tts/internal/server"
	"github.com/example/go-native-tts/internal/tts"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the plugin host HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			logger := slog.Default()
			reg, err := newRegistry(cfg, logger)
			if err != nil {
				return err
			}
			if err := reg.Activate(tts.PluginID); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srvErr := server.New(cfg.Server, reg, logger).Start(ctx)
			return errors.Join(srvErr, reg.Deactivate(tts.PluginID))
		},
	}
}
