package convert

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

func TestConvertProducesAllPixels(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{name: "even dimensions", w: 8, h: 6},
		{name: "odd width", w: 5, h: 4},
		{name: "odd height", w: 4, h: 5},
		{name: "both odd", w: 5, h: 3},
		{name: "single pixel", w: 1, h: 1},
		{name: "vga", w: 640, h: 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := frame.UniformRaw(tt.w, tt.h, 90, 110, 160)
			out := Convert(f)
			assert.Equal(t, tt.w, out.Width)
			assert.Equal(t, tt.h, out.Height)
			assert.Len(t, out.Pix, tt.w*tt.h*3)
		})
	}
}

func TestConvertNeutralGray(t *testing.T) {
	f := frame.UniformRaw(4, 4, 128, 128, 128)
	out := Convert(f)
	for i, v := range out.Pix {
		require.Equal(t, byte(128), v, "pix %d", i)
	}
}

func TestConvertMatchesReferenceCoefficients(t *testing.T) {
	// Every output pixel must equal the stdlib BT.601 conversion of its
	// (Y, U, V) triple.
	f := frame.UniformRaw(6, 4, 0, 0, 0)
	for i := range f.Y {
		f.Y[i] = byte(40 + i*7)
	}
	for i := range f.U {
		f.U[i] = byte(60 + i*11)
		f.V[i] = byte(200 - i*9)
	}

	out := Convert(f)
	cw := f.ChromaWidth()
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			ci := (y/2)*cw + x/2
			wantR, wantG, wantB := color.YCbCrToRGB(f.Y[y*f.Width+x], f.U[ci], f.V[ci])
			r, g, b := out.At(x, y)
			assert.Equal(t, wantR, r, "R at (%d,%d)", x, y)
			assert.Equal(t, wantG, g, "G at (%d,%d)", x, y)
			assert.Equal(t, wantB, b, "B at (%d,%d)", x, y)
		}
	}
}

func TestPackVUOrder(t *testing.T) {
	f := frame.UniformRaw(4, 4, 128, 0, 0)
	// Asymmetric chroma so a swapped order cannot pass.
	copy(f.U, []byte{10, 11, 12, 13})
	copy(f.V, []byte{250, 251, 252, 253})

	vu := PackVU(f)
	require.Len(t, vu, 8)
	assert.Equal(t, []byte{250, 10, 251, 11, 252, 12, 253, 13}, vu)
}

func TestPackVUCollapsesStrides(t *testing.T) {
	// 4x2 frame with padded chroma rows (stride 3, width 2).
	f := &frame.Raw{
		Width:  4,
		Height: 2,
		Y:      make([]byte, 8),
		U:      []byte{1, 2, 99},
		V:      []byte{7, 8, 99},
	}
	vu := PackVU(f)
	assert.Equal(t, []byte{7, 1, 8, 2}, vu)
}

func TestConvertUsesVBeforeU(t *testing.T) {
	// U and V far apart: reading the pair in the wrong order produces a
	// wildly different color.
	f := frame.UniformRaw(2, 2, 128, 0, 255)
	out := Convert(f)

	wantR, wantG, wantB := color.YCbCrToRGB(128, 0, 255)
	r, g, b := out.At(0, 0)
	assert.Equal(t, wantR, r)
	assert.Equal(t, wantG, g)
	assert.Equal(t, wantB, b)

	swappedR, _, _ := color.YCbCrToRGB(128, 255, 0)
	assert.NotEqual(t, swappedR, r)
}

func TestConvertEmptyFrame(t *testing.T) {
	tests := []struct {
		name  string
		frame *frame.Raw
	}{
		{name: "nil frame", frame: nil},
		{name: "zero dimensions", frame: &frame.Raw{}},
		{name: "missing luma", frame: &frame.Raw{Width: 4, Height: 4}},
		{name: "short luma", frame: &frame.Raw{Width: 4, Height: 4, Y: make([]byte, 8)}},
		{
			name:  "short chroma",
			frame: &frame.Raw{Width: 4, Height: 4, Y: make([]byte, 16), U: make([]byte, 1), V: make([]byte, 4)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Convert(tt.frame)
			require.True(t, out.IsNeutral())
		})
	}
}

func TestConvertDoesNotAliasPlanes(t *testing.T) {
	f := frame.UniformRaw(4, 4, 100, 128, 128)
	out := Convert(f)
	before := make([]byte, len(out.Pix))
	copy(before, out.Pix)

	for i := range f.Y {
		f.Y[i] = 255
	}
	assert.Equal(t, before, out.Pix)
}

func BenchmarkConvertVGA(b *testing.B) {
	f := frame.UniformRaw(640, 480, 90, 110, 160)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Convert(f)
	}
}
