package decode

import (
	"github.com/chewxy/math32"
)

// Softmax converts a score vector to probabilities. Numerically stable:
// the max is subtracted before exponentiation. Returns a new slice.
func Softmax(v []float32) []float32 {
	out := make([]float32, len(v))
	if len(v) == 0 {
		return out
	}
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	var sum float32
	for i, x := range v {
		e := math32.Exp(x - m)
		out[i] = e
		sum += e
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// probOfIndex computes the softmax probability of v[idx] among v.
// If values already look like probabilities (sum≈1 and in [0,1]), returns
// v[idx] unchanged.
func probOfIndex(v []float32, idx int) float32 {
	if len(v) == 0 || idx < 0 || idx >= len(v) {
		return 0
	}
	var sum float32
	minV, maxV := v[0], v[0]
	for _, x := range v {
		sum += x
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
	}
	if sum > 0.99 && sum < 1.01 && minV >= 0 && maxV <= 1 {
		return v[idx]
	}
	var denom float32
	for _, x := range v {
		denom += math32.Exp(x - maxV)
	}
	if denom == 0 {
		return 0
	}
	return math32.Exp(v[idx]-maxV) / denom
}
