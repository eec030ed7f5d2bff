package engine

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/lumo/internal/models"
	"github.com/MeKo-Tech/lumo/internal/onnx"
)

// Config holds configuration for the inference engine.
type Config struct {
	ModelPath  string         // Path to ONNX classification model
	NumThreads int            // Number of CPU threads (0 for auto)
	GPU        onnx.GPUConfig // GPU acceleration configuration
}

// DefaultConfig returns a default engine configuration.
func DefaultConfig() Config {
	return Config{
		ModelPath:  models.GetClassifierModelPath("", false),
		NumThreads: 0,
		GPU:        onnx.DefaultGPUConfig(),
	}
}

// UpdateModelPath updates ModelPath based on modelsDir and the variant flag.
func (c *Config) UpdateModelPath(modelsDir string, useServer bool) {
	c.ModelPath = models.GetClassifierModelPath(modelsDir, useServer)
}

// validateConfig validates the engine configuration.
func validateConfig(config Config) error {
	if config.ModelPath == "" {
		return errors.New("model path cannot be empty")
	}
	if config.NumThreads < 0 {
		return fmt.Errorf("num threads must be >= 0, got %d", config.NumThreads)
	}
	return onnx.ValidateGPUConfig(config.GPU)
}
