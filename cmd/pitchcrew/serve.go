// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pitchcrew/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Serve exposes runs, stage actions, document export, Prometheus metrics
and a health check over HTTP. Runs live in the configured store, in memory
by default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv, err := server.New(a.pipeline, a.store, server.Options{
			Logger:   slog.Default(),
			Gatherer: a.registry,
			Subtitle: cfg.Render.Subtitle,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
