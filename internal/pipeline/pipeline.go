// Package pipeline wires the per-frame classification stages together:
// planar YUV frame -> interleaved RGB -> model-sized image -> float tensor ->
// inference -> prediction. One dedicated worker goroutine runs all stages for
// a frame in sequence; a single-slot mailbox in front of it keeps only the
// latest frame when the source outpaces inference.
package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/lumo/internal/decode"
	"github.com/MeKo-Tech/lumo/internal/engine"
	"github.com/MeKo-Tech/lumo/internal/models"
	"github.com/MeKo-Tech/lumo/internal/preprocess"
)

// ErrShapeMismatch mirrors the engine's sentinel so callers can check the
// skip-this-frame condition without importing the engine package.
var ErrShapeMismatch = engine.ErrShapeMismatch

// Sink receives each decoded prediction. Latest-value-wins: the receiver is
// expected to keep only the newest value and must not block the worker.
type Sink func(decode.Prediction)

// Config holds configuration for the classification pipeline.
type Config struct {
	ModelsDir  string
	Engine     engine.Config
	LabelsPath string
	Normalizer preprocess.Normalizer
	Softmax    bool

	// WarmupIterations runs zero-tensor inferences at build time to absorb
	// first-call latency before real frames arrive.
	WarmupIterations int

	// StructuralMismatchLimit is the number of consecutive shape mismatches
	// tolerated before the pipeline reports a configuration error instead of
	// a per-frame hiccup.
	StructuralMismatchLimit int
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		ModelsDir:               models.GetModelsDir(""),
		Engine:                  engine.DefaultConfig(),
		LabelsPath:              models.GetLabelsPath(""),
		Normalizer:              preprocess.Default(),
		WarmupIterations:        0,
		StructuralMismatchLimit: 3,
	}
}

// Builder constructs a Classifier with fluent configuration.
type Builder struct {
	cfg  Config
	sink Sink
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithModelsDir sets the models directory and re-resolves artifact paths.
func (b *Builder) WithModelsDir(dir string) *Builder {
	if dir != "" {
		b.cfg.ModelsDir = dir
	}
	b.cfg.Engine.UpdateModelPath(b.cfg.ModelsDir, false)
	b.cfg.LabelsPath = models.GetLabelsPath(b.cfg.ModelsDir)
	return b
}

// WithModelPath overrides the classifier model path directly.
func (b *Builder) WithModelPath(path string) *Builder {
	if path != "" {
		b.cfg.Engine.ModelPath = path
	}
	return b
}

// WithLabelsPath overrides the label table path directly.
func (b *Builder) WithLabelsPath(path string) *Builder {
	if path != "" {
		b.cfg.LabelsPath = path
	}
	return b
}

// WithNormalization sets the (value - mean) / scale input mapping.
func (b *Builder) WithNormalization(mean, scale float32) *Builder {
	b.cfg.Normalizer = preprocess.Normalizer{Mean: mean, Scale: scale}
	return b
}

// WithSoftmax reports confidences as softmax probabilities. Enable for
// models that emit logits rather than probabilities.
func (b *Builder) WithSoftmax(enabled bool) *Builder {
	b.cfg.Softmax = enabled
	return b
}

// WithThreads sets the engine's intra-op thread count (if >0).
func (b *Builder) WithThreads(n int) *Builder {
	if n > 0 {
		b.cfg.Engine.NumThreads = n
	}
	return b
}

// WithGPU enables GPU acceleration for inference.
func (b *Builder) WithGPU(enabled bool) *Builder {
	b.cfg.Engine.GPU.UseGPU = enabled
	return b
}

// WithGPUDevice sets the CUDA device ID.
func (b *Builder) WithGPUDevice(deviceID int) *Builder {
	b.cfg.Engine.GPU.DeviceID = deviceID
	return b
}

// WithWarmupIterations sets model warmup runs to reduce cold-start latency.
func (b *Builder) WithWarmupIterations(n int) *Builder {
	if n >= 0 {
		b.cfg.WarmupIterations = n
	}
	return b
}

// WithStructuralMismatchLimit sets how many consecutive shape mismatches are
// treated as transient before the pipeline flags a configuration error.
func (b *Builder) WithStructuralMismatchLimit(n int) *Builder {
	if n > 0 {
		b.cfg.StructuralMismatchLimit = n
	}
	return b
}

// WithSink sets the prediction receiver.
func (b *Builder) WithSink(sink Sink) *Builder {
	b.sink = sink
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that the model file exists and configuration looks sane.
func (b *Builder) Validate() error {
	if b.cfg.Engine.ModelPath == "" {
		return errors.New("model path is empty")
	}
	if _, err := os.Stat(b.cfg.Engine.ModelPath); err != nil {
		return fmt.Errorf("model not found: %s", b.cfg.Engine.ModelPath)
	}
	if err := b.cfg.Normalizer.Validate(); err != nil {
		return err
	}
	if b.cfg.StructuralMismatchLimit < 1 {
		return errors.New("structural mismatch limit must be >= 1")
	}
	return nil
}

// Build initializes the engine and assembles the classifier. A model that
// cannot be read or parsed fails here; the pipeline never starts without a
// working engine. A missing label table is not fatal: predictions then carry
// indices only.
func (b *Builder) Build() (*Classifier, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	eng, err := engine.New(b.cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}

	dec := decode.NewDecoder()
	dec.SetSoftmax(b.cfg.Softmax)
	if b.cfg.LabelsPath != "" {
		if err := dec.LoadLabels(b.cfg.LabelsPath); err != nil {
			if _, statErr := os.Stat(b.cfg.LabelsPath); statErr == nil {
				// The file exists but is unreadable or empty; that is a
				// configuration error, not an optional extra.
				_ = eng.Close()
				return nil, fmt.Errorf("load labels: %w", err)
			}
		}
	}

	if b.cfg.WarmupIterations > 0 {
		if err := eng.Warmup(b.cfg.WarmupIterations); err != nil {
			_ = eng.Close()
			return nil, fmt.Errorf("engine warmup failed: %w", err)
		}
	}

	return newClassifier(b.cfg, eng, dec, b.sink), nil
}
