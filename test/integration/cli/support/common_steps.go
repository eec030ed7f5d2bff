package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// substituteCommandVariables expands placeholders in feature commands.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	command = strings.ReplaceAll(command, "${TEMP_DIR}", testCtx.TempDir)
	if bin := os.Getenv("LUMO_BIN"); bin != "" {
		command = strings.ReplaceAll(command, "${LUMO_BIN}", bin)
	}
	return command
}

// iRunCommand executes a CLI command and captures its outcome.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = testCtx.WorkingDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	output, err := cmd.CombinedOutput()
	testCtx.LastOutput = string(output)
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			testCtx.LastExitCode = -1
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldContain verifies output content.
func (testCtx *TestContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(testCtx.LastOutput, expected) {
		return fmt.Errorf("output does not contain %q\nOutput: %s", expected, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldBeValidJSON verifies the output parses as JSON.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	var v interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(testCtx.LastOutput)), &v); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, testCtx.LastOutput)
	}
	return nil
}

// theErrorShouldMention verifies the combined output mentions an error detail.
func (testCtx *TestContext) theErrorShouldMention(expected string) error {
	if !strings.Contains(strings.ToLower(testCtx.LastOutput), strings.ToLower(expected)) {
		return fmt.Errorf("error output does not mention %q\nOutput: %s", expected, testCtx.LastOutput)
	}
	return nil
}

// theFileShouldExist verifies a file was created.
func (testCtx *TestContext) theFileShouldExist(path string) error {
	path = testCtx.substituteCommandVariables(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("expected file does not exist: %s", path)
	}
	testCtx.TrackFile(path)
	testCtx.LastOutputFile = path
	return nil
}

// theFileShouldContainValidJSON parses the last checked file as JSON.
func (testCtx *TestContext) theFileShouldContainValidJSON() error {
	if testCtx.LastOutputFile == "" {
		return errors.New("no output file recorded; check file existence first")
	}
	data, err := os.ReadFile(testCtx.LastOutputFile) //nolint:gosec // G304: test-controlled path
	if err != nil {
		return fmt.Errorf("failed to read output file: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("output file is not valid JSON: %w\nContent: %s", err, data)
	}
	return nil
}

// RegisterCommonSteps registers the shared step definitions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file should contain valid JSON$`, testCtx.theFileShouldContainValidJSON)
}
