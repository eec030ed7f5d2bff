package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFixture represents a test fixture with input and expected output.
type TestFixture struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputFile   string                 `json:"input_file"`
	Expected    ExpectedPrediction     `json:"expected"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ExpectedPrediction represents the expected classification outcome for a
// fixture input.
type ExpectedPrediction struct {
	Index         int     `json:"index"`
	Label         string  `json:"label,omitempty"`
	MinConfidence float64 `json:"min_confidence"`
}

// LoadFixture loads a test fixture from JSON file.
func LoadFixture(t *testing.T, name string) TestFixture {
	t.Helper()

	fixturesDir := GetFixturesDir(t)
	fixturePath := filepath.Join(fixturesDir, name+".json")

	data, err := os.ReadFile(fixturePath) //nolint:gosec // G304: Reading test fixture files with controlled paths
	require.NoError(t, err, "Failed to read fixture file: %s", fixturePath)

	var fixture TestFixture
	err = json.Unmarshal(data, &fixture)
	require.NoError(t, err, "Failed to unmarshal fixture JSON")

	return fixture
}

// SaveFixture saves a test fixture to JSON file.
func SaveFixture(t *testing.T, fixture TestFixture) {
	t.Helper()

	fixturesDir := GetFixturesDir(t)
	require.NoError(t, EnsureDir(fixturesDir))

	fixturePath := filepath.Join(fixturesDir, fixture.Name+".json")

	data, err := json.MarshalIndent(fixture, "", "  ")
	require.NoError(t, err, "Failed to marshal fixture to JSON")

	err = os.WriteFile(fixturePath, data, 0o600)
	require.NoError(t, err, "Failed to write fixture file: %s", fixturePath)
}

// CreateSampleFixtures creates sample classification fixtures, one per solid
// test image. The expected indices assume a label table whose first entries
// are the primary colors; adjust the fixtures when testing another model.
func CreateSampleFixtures(t *testing.T) {
	t.Helper()

	samples := []struct {
		name  string
		file  string
		index int
		label string
	}{
		{"solid_red", "images/solid/solid_red.png", 0, "red"},
		{"solid_green", "images/solid/solid_green.png", 1, "green"},
		{"solid_blue", "images/solid/solid_blue.png", 2, "blue"},
	}
	for _, s := range samples {
		SaveFixture(t, TestFixture{
			Name:        s.name,
			Description: "Solid " + s.label + " frame classification",
			InputFile:   s.file,
			Expected: ExpectedPrediction{
				Index:         s.index,
				Label:         s.label,
				MinConfidence: 0.5,
			},
			Metadata: map[string]interface{}{
				"image_size": map[string]int{
					"width":  SmallSize.Width,
					"height": SmallSize.Height,
				},
			},
		})
	}
}

// GetFixtureInputPath returns the full path to a fixture's input file.
func GetFixtureInputPath(t *testing.T, fixture TestFixture) string {
	t.Helper()

	testDataDir := GetTestDataDir(t)
	return filepath.Join(testDataDir, fixture.InputFile)
}

// ValidateFixture validates that a fixture's input file exists.
func ValidateFixture(t *testing.T, fixture TestFixture) {
	t.Helper()

	inputPath := GetFixtureInputPath(t, fixture)
	require.True(t, FileExists(inputPath), "Fixture input file does not exist: %s", inputPath)
}
