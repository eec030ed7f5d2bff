package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/lumo/internal/engine"
	"github.com/MeKo-Tech/lumo/internal/models"
	"github.com/MeKo-Tech/lumo/internal/onnx"
	"github.com/MeKo-Tech/lumo/internal/preprocess"
)

// Source kinds accepted by SourceConfig.Kind.
const (
	SourceSynthetic = "synthetic"
	SourceImages    = "images"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ModelsDir: models.DefaultModelsDir,
		LogLevel:  "info",
		Verbose:   false,
		Model: ModelConfig{
			UseServer:  false,
			NumThreads: 0,
			Mean:       0,
			Scale:      255,
			Softmax:    false,
		},
		Pipeline: PipelineConfig{
			WarmupIterations:        0,
			StructuralMismatchLimit: 3,
		},
		Source: SourceConfig{
			Kind:      SourceSynthetic,
			Width:     640,
			Height:    480,
			FPS:       15,
			FailEvery: 0,
		},
		Output: OutputConfig{
			Format:              "text",
			ConfidencePrecision: 2,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		GPU: GPUConfig{
			Enabled:     false,
			Device:      0,
			MemoryLimit: "auto",
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "yaml"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Model.Scale == 0 {
		return fmt.Errorf("invalid model scale: %v (must be non-zero)", c.Model.Scale)
	}
	if c.Model.NumThreads < 0 {
		return fmt.Errorf("invalid model num_threads: %d (must be >= 0)", c.Model.NumThreads)
	}

	if c.Pipeline.WarmupIterations < 0 {
		return fmt.Errorf("invalid warmup iterations: %d (must be >= 0)", c.Pipeline.WarmupIterations)
	}
	if c.Pipeline.StructuralMismatchLimit < 1 {
		return fmt.Errorf("invalid structural mismatch limit: %d (must be >= 1)", c.Pipeline.StructuralMismatchLimit)
	}

	validSources := []string{SourceSynthetic, SourceImages}
	if !contains(validSources, c.Source.Kind) {
		return fmt.Errorf("invalid source kind: %s (must be one of: %s)", c.Source.Kind, strings.Join(validSources, ", "))
	}
	if c.Source.Width <= 0 || c.Source.Height <= 0 {
		return fmt.Errorf("invalid source dimensions: %dx%d (must be positive)", c.Source.Width, c.Source.Height)
	}
	if c.Source.FPS <= 0 {
		return fmt.Errorf("invalid source fps: %v (must be positive)", c.Source.FPS)
	}
	if c.Source.FailEvery < 0 {
		return fmt.Errorf("invalid source fail_every: %d (must be >= 0)", c.Source.FailEvery)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must be positive)", c.Server.ShutdownTimeout)
	}

	if c.GPU.MemoryLimit != "auto" && c.GPU.MemoryLimit != "" {
		if err := validateMemoryLimit(c.GPU.MemoryLimit); err != nil {
			return fmt.Errorf("invalid GPU memory limit: %w", err)
		}
	}

	return nil
}

// ToEngineConfig converts the config to the inference engine configuration.
// An explicit model path wins over models-dir resolution.
func (c *Config) ToEngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.NumThreads = c.Model.NumThreads
	cfg.GPU = c.toGPUConfig()
	if c.Model.Path != "" {
		cfg.ModelPath = c.Model.Path
	} else {
		cfg.UpdateModelPath(c.ModelsDir, c.Model.UseServer)
	}
	return cfg
}

// ToNormalizer converts the model section to a preprocessing normalizer.
func (c *Config) ToNormalizer() preprocess.Normalizer {
	return preprocess.Normalizer{
		Mean:  float32(c.Model.Mean),
		Scale: float32(c.Model.Scale),
	}
}

// ResolveLabelsPath returns the labels file path, falling back to the
// models-dir default when not set explicitly.
func (c *Config) ResolveLabelsPath() string {
	if c.Model.LabelsPath != "" {
		return c.Model.LabelsPath
	}
	return models.GetLabelsPath(c.ModelsDir)
}

// toGPUConfig converts to onnx.GPUConfig.
func (c *Config) toGPUConfig() onnx.GPUConfig {
	cfg := onnx.DefaultGPUConfig()
	cfg.UseGPU = c.GPU.Enabled
	cfg.DeviceID = c.GPU.Device
	if limit, ok := parseMemoryLimit(c.GPU.MemoryLimit); ok {
		cfg.GPUMemLimit = limit
	}
	return cfg
}

// Helper functions

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// memoryUnits maps size suffixes to byte multipliers, longest suffix first
// so "MB" is not matched as "B".
var memoryUnits = []struct {
	suffix     string
	multiplier float64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// validateMemoryLimit validates memory limit format (e.g., "1GB", "512MB").
func validateMemoryLimit(limit string) error {
	if _, ok := parseMemoryLimit(limit); !ok && limit != "" && limit != "auto" {
		return fmt.Errorf("memory limit must be a number followed by one of: B, KB, MB, GB (got %q)", limit)
	}
	return nil
}

// parseMemoryLimit converts "512MB"-style limits to bytes. "auto" and
// empty mean no explicit limit.
func parseMemoryLimit(limit string) (uint64, bool) {
	if limit == "" || limit == "auto" {
		return 0, false
	}
	upper := strings.ToUpper(strings.TrimSpace(limit))
	for _, unit := range memoryUnits {
		if !strings.HasSuffix(upper, unit.suffix) {
			continue
		}
		numStr := strings.TrimSuffix(upper, unit.suffix)
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil || num < 0 {
			return 0, false
		}
		return uint64(num * unit.multiplier), true
	}
	return 0, false
}
