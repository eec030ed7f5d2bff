// Command framegen writes synthetic camera frames to disk, as PNGs for
// visual inspection and as raw planar YUV (I420) files for feeding the
// pipeline's frame path in tests and benchmarks.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/lumo/internal/convert"
	"github.com/MeKo-Tech/lumo/internal/frame"
	"github.com/MeKo-Tech/lumo/internal/imgio"
	"github.com/MeKo-Tech/lumo/internal/source"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir    = flag.String("out", "testdata/frames", "Output directory")
		count     = flag.Int("count", 10, "Number of frames to generate")
		width     = flag.Int("width", 640, "Frame width")
		height    = flag.Int("height", 480, "Frame height")
		writePNG  = flag.Bool("png", true, "Write RGB PNG files")
		writeYUV  = flag.Bool("yuv", false, "Write raw planar I420 files")
		failEvery = flag.Int("fail-every", 0, "Make every Nth frame empty (0 disables)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate synthetic camera frames for testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s -count 30                  # 30 PNG frames\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -yuv -png=false            # raw I420 only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -width 320 -height 240     # QVGA frames\n", os.Args[0])
	}

	flag.Parse()

	if err := run(*outDir, *count, *width, *height, *failEvery, *writePNG, *writeYUV); err != nil {
		slog.Error("frame generation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("frame generation completed", "dir", *outDir, "count", *count)
}

func run(dir string, count, width, height, failEvery int, writePNG, writeYUV bool) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	src := source.NewSynthetic(source.SyntheticConfig{
		Width:     width,
		Height:    height,
		FailEvery: failEvery,
	})

	for seq := uint64(1); seq <= uint64(count); seq++ {
		f := src.Generate(seq)
		base := filepath.Join(dir, fmt.Sprintf("frame_%06d", seq))

		if writePNG {
			packed := convert.Convert(f)
			if err := imgio.SavePNG(base+".png", packed.ToImage()); err != nil {
				f.Release()
				return err
			}
		}
		if writeYUV {
			if err := writeI420(base+".i420", f); err != nil {
				f.Release()
				return err
			}
		}
		f.Release()
	}
	return nil
}

// writeI420 writes the planes in standard I420 order: Y, then U, then V.
// Empty frames produce an empty file.
func writeI420(path string, f *frame.Raw) error {
	out, err := os.Create(path) //nolint:gosec // path is operator-provided
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = out.Close() }()

	if f.IsEmpty() {
		return nil
	}
	for _, plane := range [][]byte{f.Y, f.U, f.V} {
		if _, err := out.Write(plane); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return out.Close()
}
