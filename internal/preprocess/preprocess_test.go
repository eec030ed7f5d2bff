package preprocess

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/lumo/internal/frame"
	"github.com/MeKo-Tech/lumo/internal/mempool"
	"github.com/MeKo-Tech/lumo/internal/onnx"
)

func TestDefaultMapsToUnitRange(t *testing.T) {
	img := frame.NewPacked(2, 1)
	img.Set(0, 0, 0, 128, 255)
	img.Set(1, 0, 64, 32, 16)

	ten, err := Default().Normalize(img)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 2, 3}, ten.Shape)

	assert.InDelta(t, 0.0, ten.Data[0], 1e-6)
	assert.InDelta(t, 128.0/255.0, ten.Data[1], 1e-6)
	assert.InDelta(t, 1.0, ten.Data[2], 1e-6)
	assert.InDelta(t, 64.0/255.0, ten.Data[3], 1e-6)
}

func TestZerosStayZeros(t *testing.T) {
	img := frame.NewPacked(4, 4)
	ten, err := Default().Normalize(img)
	require.NoError(t, err)
	for i, v := range ten.Data {
		require.Zero(t, v, "element %d", i)
	}
}

func TestDeterministic(t *testing.T) {
	img := frame.NewPacked(8, 8)
	for i := range img.Pix {
		img.Pix[i] = byte(i * 7)
	}
	n := Normalizer{Mean: 127.5, Scale: 127.5}

	a, err := n.Normalize(img)
	require.NoError(t, err)
	b, err := n.Normalize(img)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, a.Shape, b.Shape)
}

func TestCustomMeanScale(t *testing.T) {
	img := frame.NewPacked(1, 1)
	img.Set(0, 0, 0, 128, 255)

	ten, err := Normalizer{Mean: 127.5, Scale: 127.5}.Normalize(img)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, ten.Data[0], 1e-6)
	assert.InDelta(t, 0.0039, ten.Data[1], 1e-3)
	assert.InDelta(t, 1.0, ten.Data[2], 1e-6)
}

func TestZeroScaleRejected(t *testing.T) {
	img := frame.NewPacked(2, 2)
	_, err := Normalizer{Mean: 0, Scale: 0}.NormalizeInto(img, onnx.LayoutNHWC, make([]float32, 12))
	assert.Error(t, err)
	assert.Error(t, Normalizer{Scale: 0}.Validate())
	assert.NoError(t, Default().Validate())
}

func TestNHWCOrdering(t *testing.T) {
	// 2x2 image, one distinctive pixel at (1, 0).
	img := frame.NewPacked(2, 2)
	img.Set(1, 0, 255, 0, 128)

	ten, err := Default().Normalize(img)
	require.NoError(t, err)
	// NHWC: pixel (x=1, y=0) occupies elements [3..5].
	assert.InDelta(t, 1.0, ten.Data[3], 1e-6)
	assert.InDelta(t, 0.0, ten.Data[4], 1e-6)
	assert.InDelta(t, 128.0/255.0, ten.Data[5], 1e-6)
}

func TestNCHWOrdering(t *testing.T) {
	img := frame.NewPacked(2, 2)
	img.Set(1, 0, 255, 0, 128)

	ten, err := Default().NormalizeLayout(img, onnx.LayoutNCHW)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 2, 2}, ten.Shape)
	// NCHW: pixel (x=1, y=0) is element 1 of each 4-element plane.
	assert.InDelta(t, 1.0, ten.Data[1], 1e-6)
	assert.InDelta(t, 0.0, ten.Data[4+1], 1e-6)
	assert.InDelta(t, 128.0/255.0, ten.Data[8+1], 1e-6)
}

func TestModelInputElementCount(t *testing.T) {
	img := frame.NewPacked(224, 224)
	ten, err := Default().Normalize(img)
	require.NoError(t, err)
	assert.Len(t, ten.Data, 224*224*3)
	assert.Equal(t, []int64{1, 224, 224, 3}, ten.Shape)
	assert.NoError(t, onnx.VerifyImageTensor(ten))
}

func TestNormalizeIntoPooledBuffer(t *testing.T) {
	img := frame.NewPacked(16, 16)
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	buf := mempool.GetFloat32(16 * 16 * 3)
	defer mempool.PutFloat32(buf)

	ten, err := Default().NormalizeInto(img, onnx.LayoutNHWC, buf)
	require.NoError(t, err)
	assert.Len(t, ten.Data, 16*16*3)
	assert.InDelta(t, 200.0/255.0, ten.Data[0], 1e-6)
}

func TestNormalizeIntoShortBuffer(t *testing.T) {
	img := frame.NewPacked(8, 8)
	_, err := Default().NormalizeInto(img, onnx.LayoutNHWC, make([]float32, 10))
	assert.Error(t, err)
}

func TestNormalizeErrors(t *testing.T) {
	_, err := Default().Normalize(nil)
	assert.Error(t, err)

	_, err = Default().Normalize(&frame.Packed{})
	assert.Error(t, err)

	short := &frame.Packed{Width: 4, Height: 4, Pix: make([]byte, 10)}
	_, err = Default().Normalize(short)
	assert.Error(t, err)
}

func TestNeutralPlaceholder(t *testing.T) {
	ten, err := Default().Normalize(frame.EmptyPacked())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1, 3}, ten.Shape)
	for _, v := range ten.Data {
		assert.InDelta(t, 128.0/255.0, v, 1e-6)
	}
}

// TestNormalize_RangeProperty verifies default normalization lands in [0, 1]
// for arbitrary pixel values.
func TestNormalize_RangeProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("default output within [0, 1]", prop.ForAll(
		func(w, h int, fill uint8) bool {
			img := frame.NewPacked(w, h)
			for i := range img.Pix {
				img.Pix[i] = fill
			}
			ten, err := Default().Normalize(img)
			if err != nil {
				return false
			}
			for _, v := range ten.Data {
				if v < 0 || v > 1 {
					return false
				}
			}
			return len(ten.Data) == w*h*3
		},
		gen.IntRange(1, 48),
		gen.IntRange(1, 48),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}

func BenchmarkNormalize224(b *testing.B) {
	img := frame.NewPacked(224, 224)
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	n := Default()
	buf := make([]float32, 224*224*3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := n.NormalizeInto(img, onnx.LayoutNHWC, buf); err != nil {
			b.Fatal(err)
		}
	}
}
