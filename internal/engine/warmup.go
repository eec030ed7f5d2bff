package engine

import "github.com/MeKo-Tech/lumo/internal/onnx"

// Warmup runs a number of forward passes with a zero tensor to absorb
// first-run latency (kernel compilation, allocator growth) before real
// frames arrive.
func (e *Engine) Warmup(iterations int) error {
	if iterations <= 0 {
		return nil
	}

	t := onnx.Tensor{
		Data:  make([]float32, e.inputElems),
		Shape: e.InputShape(),
	}
	for range iterations {
		if _, err := e.Run(t); err != nil {
			return err
		}
	}
	return nil
}
