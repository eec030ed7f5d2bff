package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/lumo/internal/decode"
	"github.com/MeKo-Tech/lumo/internal/server"
	"github.com/MeKo-Tech/lumo/internal/version"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the live pipeline behind an HTTP API",
	Long: `Run the live classification pipeline and expose it over HTTP.

Endpoints:
  GET /healthz            pipeline health and frame counters
  GET /api/v1/prediction  most recent prediction
  GET /api/v1/model       model metadata
  GET /ws                 websocket prediction stream
  GET /metrics            Prometheus metrics

Examples:
  lumo serve --port 8080
  lumo serve --source images --images-dir ./frames --host 0.0.0.0`,
	SilenceUsage: true,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindSourceFlags(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// The sink publishes into the server, which in turn reads pipeline
		// state for /healthz. Set up the classifier first with a sink that
		// resolves the server at publish time; nothing is published before
		// Start below.
		var srv *server.Server
		sink := func(p decode.Prediction) {
			srv.Publish(p)
		}

		src, err := newSource(cfg)
		if err != nil {
			return err
		}

		classifier, err := buildClassifier(cfg, sink)
		if err != nil {
			return fmt.Errorf("build pipeline: %w", err)
		}
		defer func() { _ = classifier.Close() }()

		srv = server.New(server.Config{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			CORSOrigin:      cfg.Server.CORSOrigin,
			TimeoutSec:      cfg.Server.TimeoutSec,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		}, classifier)

		if err := classifier.Start(); err != nil {
			return err
		}
		go func() {
			for f := range src.Frames(ctx) {
				classifier.Submit(f)
			}
		}()

		slog.Info("serving", "host", cfg.Server.Host, "port", cfg.Server.Port,
			"source", cfg.Source.Kind, "version", version.String())
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("server: %w", err)
		}

		stats := classifier.Stats()
		slog.Info("pipeline stopped",
			"processed", stats.FramesProcessed,
			"dropped", stats.FramesDropped,
			"failed", stats.FramesFailed)
		return classifier.Close()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "bind address")
	serveCmd.Flags().Int("port", 8080, "listen port")
	serveCmd.Flags().String("cors-origin", "*", "Access-Control-Allow-Origin value")
	serveCmd.Flags().String("source", "", "frame source (synthetic, images)")
	serveCmd.Flags().String("images-dir", "", "directory of images for the images source")
	serveCmd.Flags().Float64("fps", 0, "source frame rate")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.cors_origin", serveCmd.Flags().Lookup("cors-origin"))
}
