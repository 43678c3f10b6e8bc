package support

import (
	"bytes"
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

// iRunCommand runs command with the scenario environment. Arguments are split
// on whitespace, so paths must not contain spaces.
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
	cmd.Dir = testCtx.TempDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	testCtx.LastStdout = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			return fmt.Errorf("failed to run %q: %w", command, err)
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nStdout: %s\nStderr: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastStdout, testCtx.LastStderr)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nStdout: %s", testCtx.LastStdout)
	}
	return nil
}

func (testCtx *TestContext) theExitCodeShouldBe(code int) error {
	if testCtx.LastExitCode != code {
		return fmt.Errorf("expected exit code %d, got %d\nStdout: %s\nStderr: %s",
			code, testCtx.LastExitCode, testCtx.LastStdout, testCtx.LastStderr)
	}
	return nil
}

// theOutputShouldContain checks stdout.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	expectedText = testCtx.substituteCommandVariables(expectedText)
	if !strings.Contains(testCtx.LastStdout, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastStdout)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	text = testCtx.substituteCommandVariables(text)
	if strings.Contains(testCtx.LastStdout, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastStdout)
	}
	return nil
}

// theOutputLinesShouldBe compares stdout line by line.
func (testCtx *TestContext) theOutputLinesShouldBe(table *godog.Table) error {
	var want []string
	for _, row := range table.Rows {
		want = append(want, testCtx.substituteCommandVariables(row.Cells[0].Value))
	}
	got := strings.Split(strings.TrimRight(testCtx.LastStdout, "\n"), "\n")
	if len(got) != len(want) {
		return fmt.Errorf("expected %d lines, got %d\nActual output: %s", len(want), len(got), testCtx.LastStdout)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("line %d: expected %q, got %q", i+1, want[i], got[i])
		}
	}
	return nil
}

// theErrorShouldMention checks stderr.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	errorText = testCtx.substituteCommandVariables(errorText)
	if !strings.Contains(testCtx.LastStderr, errorText) {
		return fmt.Errorf("stderr does not mention '%s'\nActual stderr: %s", errorText, testCtx.LastStderr)
	}
	return nil
}

// theOutputShouldBeValidJSON verifies stdout is a JSON document.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	var v interface{}
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &v); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, testCtx.LastStdout)
	}
	return nil
}

// theJSONResultForShouldHaveTexts checks one entry of the JSON result array.
func (testCtx *TestContext) theJSONResultForShouldHaveTexts(file, texts string) error {
	var results []struct {
		File  string   `json:"file"`
		Texts []string `json:"texts"`
		Found bool     `json:"found"`
	}
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &results); err != nil {
		return fmt.Errorf("output is not a JSON result array: %w", err)
	}
	file = testCtx.substituteCommandVariables(file)
	want := strings.Split(texts, ",")
	for _, r := range results {
		if r.File != file {
			continue
		}
		if strings.Join(r.Texts, ",") != strings.Join(want, ",") {
			return fmt.Errorf("texts for %s: expected %v, got %v", file, want, r.Texts)
		}
		return nil
	}
	return fmt.Errorf("no JSON result for %s", file)
}

func (testCtx *TestContext) theFileShouldExist(filename string) error {
	filename = testCtx.substituteCommandVariables(filename)
	if _, err := os.Stat(filename); err != nil {
		return fmt.Errorf("expected file %s to exist: %w", filename, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(filename, expected string) error {
	filename = testCtx.substituteCommandVariables(filename)
	data, err := os.ReadFile(filename) //nolint:gosec // G304: test reads its own artifacts
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain '%s'", filename, expected)
	}
	return nil
}

func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.AddEnvVar(name, testCtx.substituteCommandVariables(value))
	return nil
}

// RegisterCommonSteps registers command and output steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the exit code should be (\d+)$`, testCtx.theExitCodeShouldBe)

	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output lines should be:$`, testCtx.theOutputLinesShouldBe)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON result for "([^"]*)" should have texts "([^"]*)"$`, testCtx.theJSONResultForShouldHaveTexts)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)

	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)
}
