package onnx

import (
	"errors"
	"fmt"
)

// Tensor represents a simple float32 tensor prepared for ONNX input.
// Data layout is row-major; images are NHWC or NCHW depending on the model.
type Tensor struct {
	Data  []float32
	Shape []int64 // e.g., [N, H, W, C]
}

// NewImageTensorNHWC builds a single-image tensor with shape [1, H, W, C].
// data must be length H*W*C in NHWC order.
func NewImageTensorNHWC(data []float32, h, w, c int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	expected := h * w * c
	if len(data) != expected {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	shape := []int64{1, int64(h), int64(w), int64(c)}
	return Tensor{Data: data, Shape: shape}, nil
}

// NewImageTensorNCHW builds a single-image tensor with shape [1, C, H, W].
// data must be length C*H*W in NCHW order.
func NewImageTensorNCHW(data []float32, c, h, w int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	expected := c * h * w
	if len(data) != expected {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	shape := []int64{1, int64(c), int64(h), int64(w)}
	return Tensor{Data: data, Shape: shape}, nil
}

// ValidateImageShape ensures a shape is rank 4 with positive dimensions.
func ValidateImageShape(shape []int64) error {
	if len(shape) != 4 {
		return fmt.Errorf("shape rank %d != 4", len(shape))
	}
	for i, v := range shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
	}
	return nil
}

// ElementCount returns the number of elements a shape describes, or 0 for
// shapes with non-positive dimensions.
func ElementCount(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, v := range shape {
		if v <= 0 {
			return 0
		}
		n *= int(v)
	}
	return n
}

// VerifyImageTensor checks data length matches the provided rank-4 shape.
func VerifyImageTensor(t Tensor) error {
	if err := ValidateImageShape(t.Shape); err != nil {
		return err
	}
	expected := ElementCount(t.Shape)
	if len(t.Data) != expected {
		return fmt.Errorf("tensor data length %d != expected %d for shape %v", len(t.Data), expected, t.Shape)
	}
	return nil
}

// TensorStats computes simple statistics for debug output.
func TensorStats(data []float32) (float32, float32, float32) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	var minVal, maxVal, mean float32
	minVal, maxVal = data[0], data[0]
	var sum float64
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		sum += float64(v)
	}
	mean = float32(sum / float64(len(data)))
	return minVal, maxVal, mean
}
