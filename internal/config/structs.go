package config

// Config represents the complete configuration for the lumo application.
// It covers all commands (classify, live, serve, model) and supports
// loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Model selection and input normalization
	Model ModelConfig `mapstructure:"model" yaml:"model" json:"model"`

	// Live pipeline behavior
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Frame source (for live and serve commands)
	Source SourceConfig `mapstructure:"source" yaml:"source" json:"source"`

	// Output formatting
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// GPU configuration
	GPU GPUConfig `mapstructure:"gpu" yaml:"gpu" json:"gpu"`
}

// ModelConfig contains classifier model settings.
type ModelConfig struct {
	Path       string  `mapstructure:"path" yaml:"path" json:"path"`
	LabelsPath string  `mapstructure:"labels_path" yaml:"labels_path" json:"labels_path"`
	UseServer  bool    `mapstructure:"use_server" yaml:"use_server" json:"use_server"`
	NumThreads int     `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
	Mean       float64 `mapstructure:"mean" yaml:"mean" json:"mean"`
	Scale      float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
	Softmax    bool    `mapstructure:"softmax" yaml:"softmax" json:"softmax"`
}

// PipelineConfig contains live pipeline settings.
type PipelineConfig struct {
	WarmupIterations int `mapstructure:"warmup_iterations" yaml:"warmup_iterations" json:"warmup_iterations"`

	// Consecutive shape mismatches tolerated before the pipeline reports
	// a configuration error instead of skipping frames.
	StructuralMismatchLimit int `mapstructure:"structural_mismatch_limit" yaml:"structural_mismatch_limit" json:"structural_mismatch_limit"`
}

// SourceConfig contains frame source settings.
type SourceConfig struct {
	Kind      string  `mapstructure:"kind" yaml:"kind" json:"kind"` // "synthetic" or "images"
	ImagesDir string  `mapstructure:"images_dir" yaml:"images_dir" json:"images_dir"`
	Width     int     `mapstructure:"width" yaml:"width" json:"width"`
	Height    int     `mapstructure:"height" yaml:"height" json:"height"`
	FPS       float64 `mapstructure:"fps" yaml:"fps" json:"fps"`

	// Deliver an empty frame every Nth frame (0 disables). Exercises the
	// capture-unavailable degradation path.
	FailEvery int `mapstructure:"fail_every" yaml:"fail_every" json:"fail_every"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format              string `mapstructure:"format" yaml:"format" json:"format"`
	File                string `mapstructure:"file" yaml:"file" json:"file"`
	ConfidencePrecision int    `mapstructure:"confidence_precision" yaml:"confidence_precision" json:"confidence_precision"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// GPUConfig contains GPU acceleration settings.
type GPUConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Device      int    `mapstructure:"device" yaml:"device" json:"device"`
	MemoryLimit string `mapstructure:"memory_limit" yaml:"memory_limit" json:"memory_limit"`
}
