package frame

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		frame   *Raw
		wantErr bool
	}{
		{
			name:    "valid even dimensions",
			frame:   UniformRaw(4, 4, 128, 128, 128),
			wantErr: false,
		},
		{
			name:    "valid odd dimensions",
			frame:   UniformRaw(5, 3, 128, 128, 128),
			wantErr: false,
		},
		{
			name:    "zero width",
			frame:   &Raw{Width: 0, Height: 4, Y: make([]byte, 16)},
			wantErr: true,
		},
		{
			name:    "short luma plane",
			frame:   &Raw{Width: 4, Height: 4, Y: make([]byte, 15), U: make([]byte, 4), V: make([]byte, 4)},
			wantErr: true,
		},
		{
			name:    "short chroma plane",
			frame:   &Raw{Width: 4, Height: 4, Y: make([]byte, 16), U: make([]byte, 3), V: make([]byte, 4)},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	var nilFrame *Raw
	assert.True(t, nilFrame.IsEmpty())
	assert.True(t, (&Raw{}).IsEmpty())
	assert.True(t, (&Raw{Width: 4, Height: 4, Y: make([]byte, 8)}).IsEmpty())
	assert.False(t, UniformRaw(4, 4, 0, 0, 0).IsEmpty())
}

func TestReleaseFiresExactlyOnce(t *testing.T) {
	calls := 0
	f := UniformRaw(2, 2, 128, 128, 128)
	f.OnRelease = func() { calls++ }

	f.Release()
	f.Release()
	f.Release()
	assert.Equal(t, 1, calls)
}

func TestReleaseWithoutHook(t *testing.T) {
	f := UniformRaw(2, 2, 128, 128, 128)
	f.Release() // must not panic
	var nilFrame *Raw
	nilFrame.Release()
}

func TestStrides(t *testing.T) {
	f := UniformRaw(4, 4, 0, 0, 0)
	assert.Equal(t, 4, f.YStride())
	assert.Equal(t, 2, f.CStride())

	// Padded planes: stride wider than width.
	padded := &Raw{
		Width:  4,
		Height: 2,
		Y:      make([]byte, 6*2),
		U:      make([]byte, 3*1),
		V:      make([]byte, 3*1),
	}
	assert.Equal(t, 6, padded.YStride())
	assert.Equal(t, 3, padded.CStride())
}

func TestChromaDimensions(t *testing.T) {
	f := &Raw{Width: 5, Height: 3}
	assert.Equal(t, 3, f.ChromaWidth())
	assert.Equal(t, 2, f.ChromaHeight())
}

func TestFromImageUniformGray(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}

	f := FromImage(img)
	require.NoError(t, f.Validate())
	assert.Equal(t, 8, f.Width)
	assert.Equal(t, 6, f.Height)
	for _, v := range f.Y {
		assert.Equal(t, byte(128), v)
	}
	for i := range f.U {
		assert.Equal(t, byte(128), f.U[i])
		assert.Equal(t, byte(128), f.V[i])
	}
}

func TestFromImageOddDimensions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	f := FromImage(img)
	require.NoError(t, f.Validate())
	assert.Len(t, f.Y, 15)
	assert.Len(t, f.U, 3*2)
	assert.Len(t, f.V, 3*2)
}

func TestUniformRawPlaneSizes(t *testing.T) {
	f := UniformRaw(6, 4, 50, 100, 200)
	assert.Len(t, f.Y, 24)
	assert.Len(t, f.U, 6)
	assert.Len(t, f.V, 6)
	assert.Equal(t, byte(50), f.Y[0])
	assert.Equal(t, byte(100), f.U[0])
	assert.Equal(t, byte(200), f.V[0])
}
