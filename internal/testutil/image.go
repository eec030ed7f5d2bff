package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

// ImageSize represents common image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test image sizes.
	SmallSize  = ImageSize{320, 240}
	MediumSize = ImageSize{640, 480}
	LargeSize  = ImageSize{1024, 768}
)

// CreateTestImage creates a simple test image with the specified dimensions and color.
func CreateTestImage(width, height int, backgroundColor color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)
	return img
}

// CreateGradientImage creates an image with a horizontal red-to-blue gradient,
// giving resamplers and converters non-uniform input.
func CreateGradientImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := float64(x) / float64(max(width-1, 1))
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * (1 - t)),
				G: 0,
				B: uint8(255 * t),
				A: 255,
			})
		}
	}
	return img
}

// UniformFrame builds a planar frame with constant luma and chroma.
func UniformFrame(width, height int, y, u, v byte) *frame.Raw {
	return frame.UniformRaw(width, height, y, u, v)
}

// GradientFrame builds a planar frame whose luma ramps diagonally with
// neutral chroma, so converted RGB is a gray gradient.
func GradientFrame(width, height int) *frame.Raw {
	f := frame.UniformRaw(width, height, 0, 128, 128)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.Y[y*width+x] = byte((x + y) & 0xFF)
		}
	}
	return f
}

// FrameFromImage converts an RGB image to a planar frame.
func FrameFromImage(img image.Image) *frame.Raw {
	return frame.FromImage(img)
}

// SaveImage saves an image to the specified path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	require.NoError(t, EnsureDir(dir), "Failed to create directory %s", dir)

	file, err := os.Create(path) //nolint:gosec // G304: Test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	err = png.Encode(file, img)
	require.NoError(t, err, "Failed to encode PNG image")
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	file, err := os.Open(path) //nolint:gosec // G304: Test file reading with controlled path
	require.NoError(t, err, "Failed to open image file %s", path)
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	require.NoError(t, err, "Failed to decode image")

	return img
}

// LoadImageFile loads an image from the specified path (non-testing version).
func LoadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: Opening user-provided image file is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}

// CompareImages compares two images and returns true if they are similar.
func CompareImages(img1, img2 image.Image, tolerance float64) bool {
	bounds1 := img1.Bounds()
	bounds2 := img2.Bounds()

	if bounds1 != bounds2 {
		return false
	}

	var totalDiff float64
	var pixelCount float64

	for y := bounds1.Min.Y; y < bounds1.Max.Y; y++ {
		for x := bounds1.Min.X; x < bounds1.Max.X; x++ {
			r1, g1, b1, a1 := img1.At(x, y).RGBA()
			r2, g2, b2, a2 := img2.At(x, y).RGBA()

			dr := float64(r1) - float64(r2)
			dg := float64(g1) - float64(g2)
			db := float64(b1) - float64(b2)
			da := float64(a1) - float64(a2)

			diff := math.Sqrt(dr*dr + dg*dg + db*db + da*da)
			totalDiff += diff
			pixelCount++
		}
	}

	avgDiff := totalDiff / pixelCount
	maxDiff := math.Sqrt(4 * 65535 * 65535) // Maximum possible difference

	return (avgDiff / maxDiff) <= tolerance
}

// GenerateTestImages creates a set of standard test images in the testdata
// directory: one solid image per primary color plus a gradient, sized for
// classifier input experiments.
func GenerateTestImages(t *testing.T) {
	t.Helper()

	solidDir := GetTestImageDir(t, "solid")
	require.NoError(t, EnsureDir(solidDir))

	colors := map[string]color.RGBA{
		"red":   {255, 0, 0, 255},
		"green": {0, 255, 0, 255},
		"blue":  {0, 0, 255, 255},
		"gray":  {128, 128, 128, 255},
	}
	for name, c := range colors {
		img := CreateTestImage(SmallSize.Width, SmallSize.Height, c)
		SaveImage(t, img, filepath.Join(solidDir, fmt.Sprintf("solid_%s.png", name)))
	}

	gradientDir := GetTestImageDir(t, "gradient")
	require.NoError(t, EnsureDir(gradientDir))
	SaveImage(t, CreateGradientImage(MediumSize.Width, MediumSize.Height),
		filepath.Join(gradientDir, "gradient_horizontal.png"))
}
