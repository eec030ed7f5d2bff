// Package resample scales interleaved RGB images to a model's input
// dimensions. Scaling is non-uniform: the output always has exactly the
// requested width and height, whatever the source aspect ratio.
package resample

import (
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

// Resize scales src to exactly targetWidth x targetHeight using bilinear
// interpolation. A source already at the target size is returned as a fresh
// copy so callers can always mutate the result.
func Resize(src *frame.Packed, targetWidth, targetHeight int) (*frame.Packed, error) {
	if src == nil || len(src.Pix) == 0 {
		return nil, fmt.Errorf("nil or empty source image")
	}
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, fmt.Errorf("invalid target dimensions %dx%d", targetWidth, targetHeight)
	}

	if src.Width == targetWidth && src.Height == targetHeight {
		out := frame.NewPacked(targetWidth, targetHeight)
		copy(out.Pix, src.Pix)
		return out, nil
	}

	resized := imaging.Resize(src.ToImage(), targetWidth, targetHeight, imaging.Linear)

	out := frame.NewPacked(targetWidth, targetHeight)
	for y := 0; y < targetHeight; y++ {
		srcRow := resized.Pix[y*resized.Stride:]
		dstRow := out.Pix[y*targetWidth*3:]
		for x := 0; x < targetWidth; x++ {
			dstRow[x*3+0] = srcRow[x*4+0]
			dstRow[x*3+1] = srcRow[x*4+1]
			dstRow[x*3+2] = srcRow[x*4+2]
		}
	}
	return out, nil
}
