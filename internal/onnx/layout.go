package onnx

import "fmt"

// Layout identifies how image tensors arrange their channel axis.
type Layout int

const (
	LayoutNHWC Layout = iota // [N, H, W, C]
	LayoutNCHW               // [N, C, H, W]
)

func (l Layout) String() string {
	switch l {
	case LayoutNHWC:
		return "NHWC"
	case LayoutNCHW:
		return "NCHW"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// DetectLayout locates the 3-channel axis of a rank-4 image shape. A trailing
// 3 wins over a second-axis 3, so ambiguous tiny shapes resolve to NHWC.
func DetectLayout(shape []int64) (Layout, error) {
	if err := ValidateImageShape(shape); err != nil {
		return LayoutNHWC, err
	}
	switch {
	case shape[3] == 3:
		return LayoutNHWC, nil
	case shape[1] == 3:
		return LayoutNCHW, nil
	default:
		return LayoutNHWC, fmt.Errorf("no 3-channel axis in shape %v", shape)
	}
}

// ImageDims extracts (height, width, channels) from a rank-4 shape for the
// given layout.
func ImageDims(shape []int64, l Layout) (h, w, c int, err error) {
	if err := ValidateImageShape(shape); err != nil {
		return 0, 0, 0, err
	}
	if l == LayoutNCHW {
		return int(shape[2]), int(shape[3]), int(shape[1]), nil
	}
	return int(shape[1]), int(shape[2]), int(shape[3]), nil
}
