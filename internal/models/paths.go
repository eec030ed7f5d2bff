package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Model name constants to avoid typos and ensure consistency.
const (
	// Classification models.
	ClassifierMobile = "mobilenet_v2_cls.onnx"
	ClassifierServer = "efficientnet_b0_cls.onnx"

	// Label tables.
	LabelsDefault = "labels.txt"
)

// Model type categories for organized directory structure.
const (
	TypeClassification = "classification"
	TypeLabels         = "labels"
)

// Model variant categories.
const (
	VariantMobile = "mobile"
	VariantServer = "server"
)

// Default models directory.
const DefaultModelsDir = "models"

// Environment variable for models directory override.
const EnvModelsDir = "LUMO_MODELS_DIR"

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New("could not find project root (go.mod not found)")
}

// ModelInfo contains metadata about a model.
type ModelInfo struct {
	Name        string
	Type        string
	Variant     string
	Description string
	Filename    string
}

// GetModelsDir returns the models directory path from various sources
// Priority: 1. Explicit modelsDir parameter, 2. Environment variable, 3. Project root + default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}

	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}

	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultModelsDir)
	}

	return DefaultModelsDir
}

// ResolveModelPath resolves a model filename to its full path
// Supports both the organized structure and a legacy flat layout.
func ResolveModelPath(modelsDir, modelType, variant, filename string) string {
	baseDir := GetModelsDir(modelsDir)

	if modelType != "" {
		var organizedPath string
		if variant != "" && modelType == TypeClassification {
			organizedPath = filepath.Join(baseDir, modelType, variant, filename)
		} else {
			organizedPath = filepath.Join(baseDir, modelType, filename)
		}

		if _, err := os.Stat(organizedPath); err == nil {
			return organizedPath
		}
	}

	return filepath.Join(baseDir, filename)
}

// GetClassifierModelPath returns the path for a classification model.
func GetClassifierModelPath(modelsDir string, useServer bool) string {
	filename := ClassifierMobile
	variant := VariantMobile
	if useServer {
		filename = ClassifierServer
		variant = VariantServer
	}
	return ResolveModelPath(modelsDir, TypeClassification, variant, filename)
}

// GetLabelsPath returns the path for the class label table.
func GetLabelsPath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeLabels, "", LabelsDefault)
}

// ValidateModelExists checks if a model file exists at the given path.
func ValidateModelExists(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}

// ListAvailableModels returns information about available models.
func ListAvailableModels() []ModelInfo {
	return []ModelInfo{
		{
			Name:        "mobile-classifier",
			Type:        TypeClassification,
			Variant:     VariantMobile,
			Description: "MobileNetV2 frame classifier",
			Filename:    ClassifierMobile,
		},
		{
			Name:        "server-classifier",
			Type:        TypeClassification,
			Variant:     VariantServer,
			Description: "EfficientNet-B0 frame classifier",
			Filename:    ClassifierServer,
		},
		{
			Name:        "default-labels",
			Type:        TypeLabels,
			Variant:     "",
			Description: "Class label table, one name per line",
			Filename:    LabelsDefault,
		},
	}
}
