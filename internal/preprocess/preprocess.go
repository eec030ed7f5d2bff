// Package preprocess turns interleaved RGB images into float32 model input
// tensors.
package preprocess

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/lumo/internal/frame"
	"github.com/MeKo-Tech/lumo/internal/onnx"
)

// Normalizer maps 8-bit channel values to floats via (value - Mean) / Scale.
// The defaults map [0, 255] onto [0, 1]. The same (Mean, Scale) pair applies
// to all three channels; channel order is whatever the converter produced.
type Normalizer struct {
	Mean  float32
	Scale float32
}

// Default returns the standard [0, 1] normalizer.
func Default() Normalizer {
	return Normalizer{Mean: 0, Scale: 255}
}

// Validate rejects configurations that would divide by zero.
func (n Normalizer) Validate() error {
	if n.Scale == 0 {
		return errors.New("normalizer scale must be non-zero")
	}
	return nil
}

// Normalize produces an NHWC tensor with shape [1, H, W, 3]. The output is
// fully determined by the input pixels and the normalizer's parameters.
func (n Normalizer) Normalize(img *frame.Packed) (onnx.Tensor, error) {
	return n.NormalizeLayout(img, onnx.LayoutNHWC)
}

// NormalizeLayout produces a tensor in the requested layout, allocating the
// data slice.
func (n Normalizer) NormalizeLayout(img *frame.Packed, layout onnx.Layout) (onnx.Tensor, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return onnx.Tensor{}, errors.New("nil or empty image")
	}
	return n.NormalizeInto(img, layout, make([]float32, img.Width*img.Height*3))
}

// NormalizeInto writes the tensor into buf, which must hold at least
// W*H*3 elements. Callers on the per-frame path pass pooled buffers and
// return them once inference has copied the data out.
func (n Normalizer) NormalizeInto(img *frame.Packed, layout onnx.Layout, buf []float32) (onnx.Tensor, error) {
	if err := n.Validate(); err != nil {
		return onnx.Tensor{}, err
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return onnx.Tensor{}, errors.New("nil or empty image")
	}
	w, h := img.Width, img.Height
	needed := w * h * 3
	if len(img.Pix) < needed {
		return onnx.Tensor{}, fmt.Errorf("pixel buffer too short: got %d, want %d", len(img.Pix), needed)
	}
	if cap(buf) < needed {
		return onnx.Tensor{}, fmt.Errorf("tensor buffer too small: got %d, want %d", cap(buf), needed)
	}
	data := buf[:needed]

	mean, scale := n.Mean, n.Scale
	if layout == onnx.LayoutNCHW {
		plane := w * h
		for i := 0; i < plane; i++ {
			data[i] = (float32(img.Pix[i*3]) - mean) / scale
			data[plane+i] = (float32(img.Pix[i*3+1]) - mean) / scale
			data[2*plane+i] = (float32(img.Pix[i*3+2]) - mean) / scale
		}
		return onnx.NewImageTensorNCHW(data, 3, h, w)
	}

	for i := 0; i < needed; i++ {
		data[i] = (float32(img.Pix[i]) - mean) / scale
	}
	return onnx.NewImageTensorNHWC(data, h, w, 3)
}
