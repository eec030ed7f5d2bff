package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/lumo/internal/frame"
	"github.com/MeKo-Tech/lumo/internal/imgio"
)

// ImageDirConfig configures the directory-backed source.
type ImageDirConfig struct {
	Dir  string
	FPS  float64
	Loop bool // restart from the first image after the last

	// Width and Height, when both positive, crop-and-scale every image to
	// one frame size, the way a camera delivers a fixed geometry. Zero
	// keeps each image's own dimensions.
	Width  int
	Height int
}

// ImageDir replays the supported images of a directory as planar frames at a
// fixed rate, standing in for a camera during development and integration
// tests. Images are decoded and converted once; each delivery wraps the
// shared planes in a fresh frame value so release tracking stays per-frame.
type ImageDir struct {
	cfg    ImageDirConfig
	frames []*frame.Raw
}

// NewImageDir lists, decodes, and converts the directory's images eagerly so
// a bad directory fails at construction rather than mid-stream.
func NewImageDir(cfg ImageDirConfig) (*ImageDir, error) {
	paths, err := imgio.ListDir(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported images in %s", cfg.Dir)
	}

	frames := make([]*frame.Raw, 0, len(paths))
	for _, p := range paths {
		img, _, err := imgio.Load(p)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		if cfg.Width > 0 && cfg.Height > 0 {
			img = imaging.Fill(img, cfg.Width, cfg.Height, imaging.Center, imaging.Linear)
		}
		frames = append(frames, frame.FromImage(img))
	}
	slog.Debug("image source ready", "dir", cfg.Dir, "images", len(frames))
	return &ImageDir{cfg: cfg, frames: frames}, nil
}

// Count returns the number of images the source cycles through.
func (s *ImageDir) Count() int { return len(s.frames) }

// Frames starts playback. The channel closes when ctx ends, or after one
// pass when looping is disabled.
func (s *ImageDir) Frames(ctx context.Context) <-chan *frame.Raw {
	out := make(chan *frame.Raw)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval(s.cfg.FPS))
		defer ticker.Stop()

		var seq uint64
		for {
			for _, proto := range s.frames {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
				seq++
				f := &frame.Raw{
					Width: proto.Width, Height: proto.Height,
					Y: proto.Y, U: proto.U, V: proto.V,
					Seq: seq,
				}
				if !deliver(ctx, out, f) {
					return
				}
			}
			if !s.cfg.Loop {
				return
			}
		}
	}()
	return out
}
