package onnx

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestGetLibraryName(t *testing.T) {
	name, err := getLibraryName()
	if err != nil {
		t.Fatalf("getLibraryName() failed: %v", err)
	}

	var expected string
	switch runtime.GOOS {
	case osLinux:
		expected = libLinux
	case osDarwin:
		expected = libDarwin
	case osWindows:
		expected = libWindows
	default:
		t.Skipf("unsupported OS: %s", runtime.GOOS)
	}
	if name != expected {
		t.Errorf("getLibraryName() = %s, want %s", name, expected)
	}
}

func TestGetSystemLibraryPaths(t *testing.T) {
	cpu := getSystemLibraryPaths(false)
	gpu := getSystemLibraryPaths(true)

	if len(gpu) <= len(cpu) {
		t.Errorf("GPU path list should include extra GPU locations: cpu=%d gpu=%d", len(cpu), len(gpu))
	}
	if gpu[0] != "/opt/onnxruntime/gpu/lib/libonnxruntime.so" {
		t.Errorf("GPU paths must try the GPU build first, got %s", gpu[0])
	}
	for _, p := range append(cpu, gpu...) {
		if !filepath.IsAbs(p) {
			t.Errorf("system path %s is not absolute", p)
		}
	}
}

func TestSetLibraryPathEnvOverrideMissing(t *testing.T) {
	t.Setenv(LibraryPathEnv, filepath.Join(t.TempDir(), "nope.so"))
	if err := SetLibraryPath(false); err == nil {
		t.Error("expected error for env override pointing at missing file")
	}
}

func TestTrySetLibraryPathMissing(t *testing.T) {
	if trySetLibraryPath(filepath.Join(t.TempDir(), "missing.so")) {
		t.Error("trySetLibraryPath should fail for missing file")
	}
}

func TestValidateGPUConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GPUConfig
		wantErr bool
	}{
		{name: "cpu only", config: GPUConfig{UseGPU: false}, wantErr: false},
		{name: "default gpu", config: GPUConfig{UseGPU: true, DeviceID: 0}, wantErr: false},
		{name: "negative device", config: GPUConfig{UseGPU: true, DeviceID: -1}, wantErr: true},
		{
			name:    "bad arena strategy",
			config:  GPUConfig{UseGPU: true, ArenaExtendStrategy: "kBogus"},
			wantErr: true,
		},
		{
			name:    "valid arena strategy",
			config:  GPUConfig{UseGPU: true, ArenaExtendStrategy: "kSameAsRequested"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGPUConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGPUConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultGPUConfig(t *testing.T) {
	cfg := DefaultGPUConfig()
	if cfg.UseGPU {
		t.Error("default config must be CPU-only")
	}
	if err := ValidateGPUConfig(cfg); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}
