package source

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/lumo/internal/frame"
	"github.com/MeKo-Tech/lumo/internal/mempool"
)

// SyntheticConfig configures the procedural camera.
type SyntheticConfig struct {
	Width  int
	Height int
	FPS    float64

	// FailEvery delivers an empty frame every Nth frame (0 disables),
	// exercising the capture-unavailable degradation path.
	FailEvery int
}

// DefaultSyntheticConfig returns a VGA source at 15 fps.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{Width: 640, Height: 480, FPS: 15}
}

// Synthetic generates moving-gradient YUV frames with the frame number
// stamped into the luma plane. Plane buffers come from the byte pool and
// return to it when the pipeline releases the frame.
type Synthetic struct {
	cfg SyntheticConfig
}

// NewSynthetic creates a synthetic source.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultSyntheticConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	return &Synthetic{cfg: cfg}
}

// Frames starts frame generation. The channel closes when ctx ends.
func (s *Synthetic) Frames(ctx context.Context) <-chan *frame.Raw {
	out := make(chan *frame.Raw)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval(s.cfg.FPS))
		defer ticker.Stop()

		var seq uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			seq++
			if !deliver(ctx, out, s.Generate(seq)) {
				return
			}
		}
	}()
	return out
}

// Generate builds one frame. Every FailEvery-th frame is empty.
func (s *Synthetic) Generate(seq uint64) *frame.Raw {
	if s.cfg.FailEvery > 0 && seq%uint64(s.cfg.FailEvery) == 0 {
		slog.Debug("synthetic source injecting empty frame", "seq", seq)
		return &frame.Raw{Seq: seq}
	}

	w, h := s.cfg.Width, s.cfg.Height
	cw, ch := (w+1)/2, (h+1)/2

	yPlane := mempool.GetBytes(w * h)
	uPlane := mempool.GetBytes(cw * ch)
	vPlane := mempool.GetBytes(cw * ch)

	// Diagonal gradient sliding by four luma steps per frame.
	phase := int(seq * 4)
	for y := 0; y < h; y++ {
		row := yPlane[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			row[x] = byte((x + y + phase) & 0xFF)
		}
	}
	// Chroma drifts slowly so predictions change over time even for
	// color-sensitive models.
	uVal := byte(96 + int(seq)%64)
	vVal := byte(160 - int(seq)%64)
	for i := range uPlane {
		uPlane[i] = uVal
		vPlane[i] = vVal
	}

	f := &frame.Raw{
		Width: w, Height: h,
		Y: yPlane, U: uPlane, V: vPlane,
		Seq: seq,
		OnRelease: func() {
			mempool.PutBytes(yPlane)
			mempool.PutBytes(uPlane)
			mempool.PutBytes(vPlane)
		},
	}
	stampCounter(f, seq)
	return f
}

// stampCounter renders the frame number into the top-left corner of the luma
// plane so individual frames are distinguishable in captures and tests.
func stampCounter(f *frame.Raw, seq uint64) {
	text := fmt.Sprintf("%06d", seq)
	face := basicfont.Face7x13

	img := image.NewGray(image.Rect(0, 0, len(text)*face.Advance+4, face.Height+4))
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(2, face.Ascent+2),
	}
	d.DrawString(text)

	b := img.Bounds()
	for y := 0; y < b.Dy() && y < f.Height; y++ {
		for x := 0; x < b.Dx() && x < f.Width; x++ {
			if img.GrayAt(x, y).Y > 128 {
				f.Y[y*f.Width+x] = 235
			}
		}
	}
}
