package frame

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

// Raw is a single planar YUV 4:2:0 frame as delivered by a capture source.
// Y holds one full-resolution luma plane; U and V hold quarter-resolution
// chroma planes ((W+1)/2 x (H+1)/2 samples each). Planes are row-major with
// strides inferred from plane length, so padded camera buffers pass through
// unchanged.
type Raw struct {
	Width  int
	Height int
	Y      []byte
	U      []byte
	V      []byte

	// Seq is a monotonically increasing frame number assigned by the source.
	Seq uint64

	// OnRelease returns the frame's backing buffer to its owner. Set by the
	// source before the frame enters the pipeline; fired exactly once by
	// Release regardless of how many paths attempt it.
	OnRelease func()

	releaseOnce sync.Once
}

// NewRaw builds a frame over caller-owned planes. The planes are not copied.
func NewRaw(width, height int, y, u, v []byte) *Raw {
	return &Raw{Width: width, Height: height, Y: y, U: u, V: v}
}

// ChromaWidth returns the number of chroma samples per row.
func (f *Raw) ChromaWidth() int { return (f.Width + 1) / 2 }

// ChromaHeight returns the number of chroma rows.
func (f *Raw) ChromaHeight() int { return (f.Height + 1) / 2 }

// YStride returns the luma plane's row stride in bytes.
func (f *Raw) YStride() int {
	if f.Height <= 0 {
		return 0
	}
	return len(f.Y) / f.Height
}

// CStride returns the chroma planes' row stride in bytes.
func (f *Raw) CStride() int {
	ch := f.ChromaHeight()
	if ch <= 0 {
		return 0
	}
	return len(f.U) / ch
}

// IsEmpty reports whether the frame carries no usable pixel data. A capture
// source that lost its device delivers such frames; downstream stages degrade
// to a neutral placeholder instead of failing.
func (f *Raw) IsEmpty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Y) < f.Width*f.Height
}

// Validate checks that all three planes cover the declared dimensions.
func (f *Raw) Validate() error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", f.Width, f.Height)
	}
	if len(f.Y) < f.Width*f.Height {
		return fmt.Errorf("luma plane too short: got %d, want >= %d", len(f.Y), f.Width*f.Height)
	}
	cw, ch := f.ChromaWidth(), f.ChromaHeight()
	if len(f.U) < cw*ch {
		return fmt.Errorf("U plane too short: got %d, want >= %d", len(f.U), cw*ch)
	}
	if len(f.V) < cw*ch {
		return fmt.Errorf("V plane too short: got %d, want >= %d", len(f.V), cw*ch)
	}
	return nil
}

// Release fires the frame's release hook. Safe to call from multiple paths;
// only the first call has effect.
func (f *Raw) Release() {
	if f == nil {
		return
	}
	f.releaseOnce.Do(func() {
		if f.OnRelease != nil {
			f.OnRelease()
		}
	})
}

// FromImage converts an image to a planar YUV 4:2:0 frame using BT.601
// full-range coefficients. Chroma samples are the average of each 2x2 luma
// block. Odd dimensions replicate the last row/column into the partial block.
func FromImage(img image.Image) *Raw {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return &Raw{}
	}
	cw, ch := (w+1)/2, (h+1)/2

	yPlane := make([]byte, w*h)
	uPlane := make([]byte, cw*ch)
	vPlane := make([]byte, cw*ch)

	// Per-pixel luma first, accumulating chroma per 2x2 block.
	uSum := make([]int, cw*ch)
	vSum := make([]int, cw*ch)
	count := make([]int, cw*ch)
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			r, g, bb, _ := img.At(b.Min.X+xx, b.Min.Y+yy).RGBA()
			yv, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(bb>>8))
			yPlane[yy*w+xx] = yv
			ci := (yy/2)*cw + xx/2
			uSum[ci] += int(cb)
			vSum[ci] += int(cr)
			count[ci]++
		}
	}
	for i := range uPlane {
		if count[i] == 0 {
			uPlane[i], vPlane[i] = 128, 128
			continue
		}
		uPlane[i] = uint8(uSum[i] / count[i])
		vPlane[i] = uint8(vSum[i] / count[i])
	}

	return &Raw{Width: w, Height: h, Y: yPlane, U: uPlane, V: vPlane}
}

// UniformRaw builds a frame filled with a single YCbCr value. Used by tests
// and by synthetic sources as a base canvas.
func UniformRaw(width, height int, y, u, v byte) *Raw {
	f := &Raw{Width: width, Height: height}
	f.Y = make([]byte, width*height)
	cw, ch := f.ChromaWidth(), f.ChromaHeight()
	f.U = make([]byte, cw*ch)
	f.V = make([]byte, cw*ch)
	for i := range f.Y {
		f.Y[i] = y
	}
	for i := range f.U {
		f.U[i] = u
		f.V[i] = v
	}
	return f
}
