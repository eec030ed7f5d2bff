// Package mock builds synthetic classifier outputs for tests that must not
// depend on a real ONNX Runtime install.
package mock

// Scores represents synthetic classification output as a flat array with
// shape. Typical shape is [1, C] for C classes.
type Scores struct {
	Data  []float32
	Shape []int64
}

// NewPeakedScores creates a [1, classes] score vector with high at winner and
// low everywhere else, so argmax yields the given index.
func NewPeakedScores(classes, winner int, high, low float32) Scores {
	if classes <= 0 || winner < 0 || winner >= classes {
		return Scores{Data: nil, Shape: []int64{}}
	}
	data := make([]float32, classes)
	for i := range data {
		data[i] = low
	}
	data[winner] = high
	return Scores{Data: data, Shape: []int64{1, int64(classes)}}
}

// NewUniformScores creates a [1, classes] vector with every class at value.
// All classes tie, so a stable argmax must pick index 0.
func NewUniformScores(classes int, value float32) Scores {
	if classes <= 0 {
		return Scores{Data: nil, Shape: []int64{}}
	}
	data := make([]float32, classes)
	for i := range data {
		data[i] = value
	}
	return Scores{Data: data, Shape: []int64{1, int64(classes)}}
}

// NewTiedScores creates a vector where the given indices share the maximum
// value. Indices outside [0, classes) are ignored.
func NewTiedScores(classes int, tied []int, high, low float32) Scores {
	if classes <= 0 {
		return Scores{Data: nil, Shape: []int64{}}
	}
	data := make([]float32, classes)
	for i := range data {
		data[i] = low
	}
	for _, idx := range tied {
		if idx >= 0 && idx < classes {
			data[idx] = high
		}
	}
	return Scores{Data: data, Shape: []int64{1, int64(classes)}}
}

// NewRampScores creates a strictly increasing vector, so argmax is the last
// index.
func NewRampScores(classes int, start, step float32) Scores {
	if classes <= 0 {
		return Scores{Data: nil, Shape: []int64{}}
	}
	data := make([]float32, classes)
	v := start
	for i := range data {
		data[i] = v
		v += step
	}
	return Scores{Data: data, Shape: []int64{1, int64(classes)}}
}
