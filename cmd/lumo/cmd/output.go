package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/lumo/internal/config"
	"github.com/MeKo-Tech/lumo/internal/pipeline"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// validateFormat rejects unknown output formats before any work happens.
func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			format, strings.Join([]string{formatText, formatJSON, formatYAML}, ", "))
	}
}

// encode writes v to w in the requested structured format.
func encode(w io.Writer, v interface{}, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(v)
	default:
		return fmt.Errorf("no structured encoding for format %q", format)
	}
}

// outputWriter returns the destination for command output: a file when
// --output is configured, stdout otherwise.
func outputWriter(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.Output.File == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(cfg.Output.File)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// buildClassifier assembles a pipeline from the effective configuration.
func buildClassifier(cfg *config.Config, sink pipeline.Sink) (*pipeline.Classifier, error) {
	b := pipeline.NewBuilder().
		WithModelsDir(cfg.ModelsDir).
		WithModelPath(cfg.Model.Path).
		WithLabelsPath(cfg.ResolveLabelsPath()).
		WithNormalization(float32(cfg.Model.Mean), float32(cfg.Model.Scale)).
		WithSoftmax(cfg.Model.Softmax).
		WithThreads(cfg.Model.NumThreads).
		WithGPU(cfg.GPU.Enabled).
		WithGPUDevice(cfg.GPU.Device).
		WithWarmupIterations(cfg.Pipeline.WarmupIterations).
		WithStructuralMismatchLimit(cfg.Pipeline.StructuralMismatchLimit).
		WithSink(sink)
	return b.Build()
}
