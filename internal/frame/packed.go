package frame

import (
	"image"
	"image/color"
)

// Packed is an interleaved 3-channel 8-bit image: RGB triplets, row-major,
// no row padding. It is the color converter's output and the resampler's
// working format.
type Packed struct {
	Width  int
	Height int
	Pix    []byte // len == Width*Height*3
}

// NewPacked allocates a zeroed packed image.
func NewPacked(width, height int) *Packed {
	return &Packed{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

// EmptyPacked returns the degenerate 1x1 neutral-gray image substituted for
// frames with no usable pixel data. Downstream stages treat it like any other
// image, so a capture outage degrades instead of failing.
func EmptyPacked() *Packed {
	return &Packed{Width: 1, Height: 1, Pix: []byte{128, 128, 128}}
}

// IsNeutral reports whether the image is the 1x1 placeholder.
func (p *Packed) IsNeutral() bool {
	return p != nil && p.Width == 1 && p.Height == 1 &&
		len(p.Pix) == 3 && p.Pix[0] == 128 && p.Pix[1] == 128 && p.Pix[2] == 128
}

// At returns the RGB triplet at (x, y). No bounds checking beyond the slice's.
func (p *Packed) At(x, y int) (r, g, b byte) {
	i := (y*p.Width + x) * 3
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2]
}

// Set writes the RGB triplet at (x, y).
func (p *Packed) Set(x, y int, r, g, b byte) {
	i := (y*p.Width + x) * 3
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = r, g, b
}

// ToImage copies the packed pixels into a stdlib NRGBA image with alpha 255.
func (p *Packed) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		src := p.Pix[y*p.Width*3 : (y+1)*p.Width*3]
		dst := img.Pix[y*img.Stride : y*img.Stride+p.Width*4]
		for x := 0; x < p.Width; x++ {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 255
		}
	}
	return img
}

// PackedFromImage converts any stdlib image into the interleaved format.
func PackedFromImage(img image.Image) *Packed {
	b := img.Bounds()
	p := NewPacked(b.Dx(), b.Dy())
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			p.Set(x, y, c.R, c.G, c.B)
		}
	}
	return p
}
