package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// resetConfigState clears LUMO_ environment variables and resets the
// global viper instance so tests do not leak state into each other.
func resetConfigState(t *testing.T) {
	t.Helper()
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, EnvPrefix+"_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) > 0 {
				_ = os.Unsetenv(parts[0])
			}
		}
	}
	viper.Reset()
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if loader.v == nil {
		t.Error("Loader viper instance is nil")
	}
}

func TestLoadWithNoConfigFile(t *testing.T) {
	resetConfigState(t)

	// Run from an empty directory so no stray lumo.yaml is picked up.
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	// Should get default values
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Model.Scale != 255 {
		t.Errorf("Expected default scale 255, got %v", cfg.Model.Scale)
	}
}

func TestLoadWithValidYAMLFile(t *testing.T) {
	resetConfigState(t)

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "lumo.yaml")

	yamlContent := `
log_level: debug
verbose: true
models_dir: /custom/models
model:
  mean: 127.5
  scale: 127.5
  softmax: true
source:
  kind: synthetic
  width: 320
  height: 240
  fps: 5
server:
  host: 0.0.0.0
  port: 9090
`
	if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("LoadWithFile() unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if !cfg.Verbose {
		t.Error("Expected verbose true")
	}
	if cfg.ModelsDir != "/custom/models" {
		t.Errorf("Expected custom models dir, got %s", cfg.ModelsDir)
	}
	if cfg.Model.Mean != 127.5 || cfg.Model.Scale != 127.5 {
		t.Errorf("Expected mean/scale 127.5, got %v/%v", cfg.Model.Mean, cfg.Model.Scale)
	}
	if !cfg.Model.Softmax {
		t.Error("Expected softmax true")
	}
	if cfg.Source.Width != 320 || cfg.Source.Height != 240 {
		t.Errorf("Expected 320x240 source, got %dx%d", cfg.Source.Width, cfg.Source.Height)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("Expected 0.0.0.0:9090, got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	// Values not in the file keep their defaults.
	if cfg.Server.TimeoutSec != 30 {
		t.Errorf("Expected default timeout 30, got %d", cfg.Server.TimeoutSec)
	}
	if loader.GetConfigFileUsed() != configFile {
		t.Errorf("Expected config file %s, got %s", configFile, loader.GetConfigFileUsed())
	}
}

func TestLoadWithFileNotExist(t *testing.T) {
	resetConfigState(t)

	loader := NewLoader()
	_, err := loader.LoadWithFile("/no/such/lumo.yaml")
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestLoadWithInvalidYAML(t *testing.T) {
	resetConfigState(t)

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "lumo.yaml")
	if err := os.WriteFile(configFile, []byte("log_level: [unclosed"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loader := NewLoader()
	if _, err := loader.LoadWithFile(configFile); err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestLoadValidationFailure(t *testing.T) {
	resetConfigState(t)

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "lumo.yaml")
	if err := os.WriteFile(configFile, []byte("log_level: trace\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loader := NewLoader()
	_, err := loader.LoadWithFile(configFile)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("Expected validation failure, got: %v", err)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	resetConfigState(t)
	t.Setenv("LUMO_LOG_LEVEL", "warn")
	t.Setenv("LUMO_MODELS_DIR", "/env/models")

	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("Expected env log level warn, got %s", cfg.LogLevel)
	}
	if cfg.ModelsDir != "/env/models" {
		t.Errorf("Expected env models dir, got %s", cfg.ModelsDir)
	}
}

func TestExplicitSetWinsOverDefaults(t *testing.T) {
	resetConfigState(t)

	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	loader := NewLoader()
	loader.Set("server.port", 7070)

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected port 7070 from explicit set, got %d", cfg.Server.Port)
	}
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	if len(paths) == 0 {
		t.Fatal("Expected non-empty search paths")
	}
	if paths[0] != "." {
		t.Errorf("Expected current directory first, got %s", paths[0])
	}

	found := false
	for _, p := range paths {
		if p == "/etc/lumo" {
			found = true
		}
	}
	if !found {
		t.Error("Expected /etc/lumo in search paths")
	}
}
