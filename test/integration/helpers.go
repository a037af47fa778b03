//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	SecretKey  string
	BaseURL    string
	StripePath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		BaseURL:    os.Getenv("STRIPE_BASE_URL"),
		StripePath: getStripePath(),
		Verbose:    os.Getenv("STRIPE_VERBOSE") == "true",
	}
}

// getStripePath determines the path to the stripe binary.
func getStripePath() string {
	if path := os.Getenv("STRIPE_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../stripe",
		"../../bin/stripe",
		"./stripe",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "stripe"
}

// SkipIfMissingKey skips the test unless a test-mode secret key is set.
// Live keys are refused.
func (config *TestConfig) SkipIfMissingKey(t *testing.T) {
	t.Helper()

	if config.SecretKey == "" {
		t.Skip("STRIPE_SECRET_KEY not set, skipping integration test")
	}

	if !strings.HasPrefix(config.SecretKey, "sk_test_") && !strings.HasPrefix(config.SecretKey, "rk_test_") {
		t.Skip("STRIPE_SECRET_KEY is not a test-mode key, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test unless the stripe binary exists.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	config.SkipIfMissingKey(t)

	if _, err := exec.LookPath(config.StripePath); err != nil {
		t.Skipf("stripe binary not found at %s, skipping integration test", config.StripePath)
	}
}

// CommandRunner runs the stripe binary with an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a stripe command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a stripe command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	full := append([]string{"--config", runner.configFile}, args...)

	cmd := exec.Command(runner.config.StripePath, full...)
	cmd.Env = append(os.Environ(), "STRIPE_SECRET_KEY="+runner.config.SecretKey)

	if runner.config.BaseURL != "" {
		cmd.Env = append(cmd.Env, "STRIPE_BASE_URL="+runner.config.BaseURL)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.StripePath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// CleanupCustomer deletes a customer created by a test.
func (runner *CommandRunner) CleanupCustomer(id string) {
	if id == "" {
		return
	}

	stdout, stderr, err := runner.Run("customers", "delete", id)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for customer %s: %s\nStderr: %s", id, stdout, stderr)
	}
}

// GenerateTestName creates a unique test resource name.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// WaitForCondition polls condition until it holds or timeout passes.
// Search results lag writes by up to a minute.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}
