package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/lumo/internal/config"
	"github.com/MeKo-Tech/lumo/internal/decode"
	"github.com/MeKo-Tech/lumo/internal/source"
)

// liveCmd represents the live command.
var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run the live classification pipeline",
	Long: `Run a frame source through the live pipeline, printing predictions
as they arrive.

The source delivers frames at its own rate; when inference is slower, the
pipeline keeps only the most recent frame and drops the rest.

Sources:
  synthetic  procedural moving-gradient frames (default)
  images     replay a directory of still images

Examples:
  lumo live --fps 15 --width 640 --height 480
  lumo live --source images --images-dir ./frames --duration 10s
  lumo live --fail-every 10`,
	SilenceUsage: true,
	// Bound here rather than in init: live and serve share the source.*
	// keys, and only the running command's flags may hold the binding.
	PreRun: func(cmd *cobra.Command, args []string) {
		bindSourceFlags(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := validateFormat(cfg.Output.Format); err != nil {
			return err
		}
		duration, _ := cmd.Flags().GetDuration("duration")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, duration)
			defer cancel()
		}

		out := cmd.OutOrStdout()
		sink := func(p decode.Prediction) {
			printPrediction(out, p, cfg.Output.Format)
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

		if err := classifier.Start(); err != nil {
			return err
		}
		for f := range src.Frames(ctx) {
			classifier.Submit(f)
		}

		stats := classifier.Stats()
		fmt.Fprintf(cmd.ErrOrStderr(), "processed %d frames, dropped %d, failed %d\n",
			stats.FramesProcessed, stats.FramesDropped, stats.FramesFailed)
		return classifier.Close()
	},
}

// newSource builds the configured frame source.
func newSource(cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceImages:
		return source.NewImageDir(source.ImageDirConfig{
			Dir:    cfg.Source.ImagesDir,
			FPS:    cfg.Source.FPS,
			Loop:   true,
			Width:  cfg.Source.Width,
			Height: cfg.Source.Height,
		})
	case config.SourceSynthetic:
		return source.NewSynthetic(source.SyntheticConfig{
			Width:     cfg.Source.Width,
			Height:    cfg.Source.Height,
			FPS:       cfg.Source.FPS,
			FailEvery: cfg.Source.FailEvery,
		}), nil
	default:
		return nil, fmt.Errorf("unknown source kind: %s", cfg.Source.Kind)
	}
}

// printPrediction writes one prediction per line. Structured formats emit
// one JSON/YAML document per prediction (a stream, not an array).
func printPrediction(w io.Writer, p decode.Prediction, format string) {
	switch format {
	case formatJSON, formatYAML:
		_ = encode(w, p, format)
	default:
		label := p.Label
		if p.Index < 0 {
			label = "none"
		} else if label == "" {
			label = fmt.Sprintf("class %d", p.Index)
		}
		fmt.Fprintf(w, "frame %6d: %s (%.2f) %.1fms\n",
			p.FrameSeq, label, p.Confidence,
			float64(p.Elapsed)/float64(time.Millisecond))
	}
}

// bindSourceFlags binds a command's frame-source flags to the shared
// configuration keys. Flags the command does not define are skipped.
func bindSourceFlags(cmd *cobra.Command) {
	keys := map[string]string{
		"source":     "source.kind",
		"images-dir": "source.images_dir",
		"fps":        "source.fps",
		"width":      "source.width",
		"height":     "source.height",
		"fail-every": "source.fail_every",
	}
	for name, key := range keys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().String("source", config.SourceSynthetic, "frame source (synthetic, images)")
	liveCmd.Flags().String("images-dir", "", "directory of images for the images source")
	liveCmd.Flags().Float64("fps", 15, "source frame rate")
	liveCmd.Flags().Int("width", 640, "frame width (images are cropped and scaled to fit)")
	liveCmd.Flags().Int("height", 480, "frame height")
	liveCmd.Flags().Int("fail-every", 0, "deliver an empty frame every Nth frame (0 disables)")
	liveCmd.Flags().Duration("duration", 0, "stop after this long (0 = run until interrupted)")
}
