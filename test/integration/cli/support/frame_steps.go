package support

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/lumo/internal/imgio"
	"github.com/MeKo-Tech/lumo/internal/models"
	"github.com/MeKo-Tech/lumo/internal/testutil"
)

// aSolidTestImageExists writes a solid-color PNG into the temp dir under the
// given name, so classify scenarios have deterministic input.
func (testCtx *TestContext) aSolidTestImageExists(colorName, name string) error {
	colors := map[string]color.RGBA{
		"red":   {255, 0, 0, 255},
		"green": {0, 255, 0, 255},
		"blue":  {0, 0, 255, 255},
		"gray":  {128, 128, 128, 255},
	}
	c, ok := colors[colorName]
	if !ok {
		return fmt.Errorf("unknown test image color: %s", colorName)
	}

	img := testutil.CreateTestImage(64, 64, c)
	path := testCtx.GetTempDir(name)
	if err := imgio.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to write test image: %w", err)
	}
	testCtx.TrackFile(path)
	return nil
}

// aGradientTestImageExists writes a gradient PNG into the temp dir.
func (testCtx *TestContext) aGradientTestImageExists(name string) error {
	img := testutil.CreateGradientImage(64, 64)
	path := testCtx.GetTempDir(name)
	if err := imgio.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to write test image: %w", err)
	}
	testCtx.TrackFile(path)
	return nil
}

// theClassifierModelIsAvailable skips the scenario when no model artifact is
// present, and points LUMO_MODELS_DIR at the project models directory when
// one is.
func (testCtx *TestContext) theClassifierModelIsAvailable() error {
	modelsDir := filepath.Join(testCtx.WorkingDir, models.DefaultModelsDir)
	modelPath := models.GetClassifierModelPath(modelsDir, false)
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return godog.ErrPending
	}
	testCtx.AddEnvVar(models.EnvModelsDir, modelsDir)
	return nil
}

// RegisterFrameSteps registers image and model availability steps.
func (testCtx *TestContext) RegisterFrameSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a solid (\w+) test image "([^"]*)" exists$`, testCtx.aSolidTestImageExists)
	sc.Step(`^a gradient test image "([^"]*)" exists$`, testCtx.aGradientTestImageExists)
	sc.Step(`^the classifier model is available$`, testCtx.theClassifierModelIsAvailable)
}
