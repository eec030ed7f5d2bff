// Package decode turns raw classifier output tensors into predictions.
package decode

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MeKo-Tech/lumo/internal/onnx"
)

// Prediction is the result of classifying a single frame.
type Prediction struct {
	Index      int           `json:"index"`
	Label      string        `json:"label,omitempty"`
	Confidence float32       `json:"confidence"`
	Scores     []float32     `json:"-"`
	FrameSeq   uint64        `json:"frame_seq"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Valid reports whether the prediction names a class.
// Index -1 means the score vector was empty.
func (p Prediction) Valid() bool { return p.Index >= 0 }

// Decoder maps classifier output tensors to predictions, optionally
// attaching class labels and softmax confidences.
type Decoder struct {
	labels  []string
	softmax bool
}

// NewDecoder returns a decoder with no label table.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// SetSoftmax controls whether Decode reports confidence as the softmax
// probability of the winning class instead of its raw score. Enable for
// models that emit logits.
func (d *Decoder) SetSoftmax(enabled bool) {
	d.softmax = enabled
}

// SetLabels replaces the label table. The slice is not copied.
func (d *Decoder) SetLabels(labels []string) {
	d.labels = labels
}

// Labels returns a copy of the label table.
func (d *Decoder) Labels() []string {
	out := make([]string, len(d.labels))
	copy(out, d.labels)
	return out
}

// NumLabels returns the number of loaded labels.
func (d *Decoder) NumLabels() int { return len(d.labels) }

// LabelFor returns the label for a class index, or empty string when the
// index is out of range of the loaded table.
func (d *Decoder) LabelFor(index int) string {
	if d == nil || index < 0 || index >= len(d.labels) {
		return ""
	}
	return d.labels[index]
}

// LoadLabels loads a label file where each non-empty line names one class,
// in class-index order. Leading/trailing whitespace is trimmed. UTF-8 BOM
// is removed if present.
func (d *Decoder) LoadLabels(path string) error {
	labels, err := ReadLabels(path)
	if err != nil {
		return err
	}
	d.labels = labels
	return nil
}

// ReadLabels reads a one-label-per-line file.
func ReadLabels(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("labels path cannot be empty")
	}
	f, err := os.Open(path) //nolint:gosec // G304: Opening user-provided labels file is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing labels file: %v\n", err)
		}
	}()

	scanner := bufio.NewScanner(f)
	labels := make([]string, 0, 512)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file is empty: %s", path)
	}
	return labels, nil
}

// Decode reduces a classifier output tensor to a single prediction.
// The tensor is flattened to one score vector (leading batch dimensions
// are always size 1 here), and the winning class is the argmax with
// first-seen-max tie breaking. An empty vector yields Index -1.
func (d *Decoder) Decode(t onnx.Tensor) Prediction {
	scores := t.Data
	idx, maxVal := argmax(scores)

	p := Prediction{
		Index:      idx,
		Confidence: maxVal,
		Scores:     scores,
	}
	if idx >= 0 {
		if d.softmax {
			p.Confidence = probOfIndex(scores, idx)
		}
		p.Label = d.LabelFor(idx)
	}
	return p
}

// argmax returns index of max value and the value.
func argmax(v []float32) (int, float32) {
	if len(v) == 0 {
		return -1, 0
	}
	idx := 0
	maxVal := v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > maxVal {
			maxVal = v[i]
			idx = i
		}
	}
	return idx, maxVal
}
