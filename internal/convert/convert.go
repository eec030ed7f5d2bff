// Package convert turns planar YUV 4:2:0 camera frames into interleaved RGB.
//
// Conversion runs in two steps: the separate U and V planes are first
// repacked into a single interleaved chroma plane with V before U (NV21
// ordering), then the Y+VU pair is decoded to RGB with BT.601 full-range
// coefficients. The V-before-U ordering is part of the converter's contract:
// models downstream are trained against RGB produced from exactly this
// layout, so the pack order must not change.
package convert

import (
	"image/color"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

// Convert decodes a planar frame into an interleaved RGB image of the same
// dimensions. Frames without usable pixel data (device lost, short planes)
// yield the 1x1 neutral placeholder instead of an error, so a capture outage
// degrades the prediction rather than stopping the pipeline.
func Convert(f *frame.Raw) *frame.Packed {
	if f.IsEmpty() || f.Validate() != nil {
		return frame.EmptyPacked()
	}
	return decodeVU(f, PackVU(f))
}

// PackVU repacks the U and V planes into one interleaved plane, V first.
// The result holds ChromaWidth*ChromaHeight [V, U] pairs, row-major, with
// source plane strides collapsed.
func PackVU(f *frame.Raw) []byte {
	cw, ch := f.ChromaWidth(), f.ChromaHeight()
	us := f.CStride()
	vs := us
	if ch > 0 {
		vs = len(f.V) / ch
	}
	vu := make([]byte, cw*ch*2)
	for row := 0; row < ch; row++ {
		dst := vu[row*cw*2 : (row+1)*cw*2]
		uRow := f.U[row*us:]
		vRow := f.V[row*vs:]
		for col := 0; col < cw; col++ {
			dst[col*2] = vRow[col]
			dst[col*2+1] = uRow[col]
		}
	}
	return vu
}

// decodeVU expands the luma plane and interleaved VU plane to RGB. Each 2x2
// luma block shares one chroma sample.
func decodeVU(f *frame.Raw, vu []byte) *frame.Packed {
	w, h := f.Width, f.Height
	cw := f.ChromaWidth()
	ys := f.YStride()

	out := frame.NewPacked(w, h)
	for y := 0; y < h; y++ {
		yRow := f.Y[y*ys:]
		cRow := vu[(y/2)*cw*2:]
		dst := out.Pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			ci := (x / 2) * 2
			v := cRow[ci]
			u := cRow[ci+1]
			r, g, b := color.YCbCrToRGB(yRow[x], u, v)
			dst[x*3+0] = r
			dst[x*3+1] = g
			dst[x*3+2] = b
		}
	}
	return out
}
