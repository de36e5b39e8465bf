//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIEndpoint string
	Tenant      string
	Token       string
	ErpPath     string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint: os.Getenv("ERP_IT_API_ENDPOINT"),
		Tenant:      os.Getenv("ERP_IT_TENANT"),
		Token:       os.Getenv("ERP_IT_TOKEN"),
		ErpPath:     getErpPath(),
		Verbose:     os.Getenv("ERP_IT_VERBOSE") == "true",
	}
}

// getErpPath determines the path to the erp binary.
func getErpPath() string {
	if path := os.Getenv("ERP_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../erp",
		"./erp",
		"../erp",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "erp" // Fallback to PATH
}

// SkipIfMissingBinary skips the test when the erp binary cannot be found.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.ErpPath); err != nil {
		t.Skipf("erp binary not found at %s, skipping integration test", config.ErpPath)
	}
}

// SkipIfMissingAPI skips the test when no live API is configured.
func (config *TestConfig) SkipIfMissingAPI(t *testing.T) {
	t.Helper()
	config.SkipIfMissingBinary(t)

	if config.APIEndpoint == "" || config.Token == "" {
		t.Skip("ERP_IT_API_ENDPOINT or ERP_IT_TOKEN not set, skipping integration test")
	}
}

// CommandRunner runs erp commands against an isolated config file.
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

// Run executes an erp command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes an erp command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile}, args...)

	cmd := exec.Command(runner.config.ErpPath, args...) // #nosec G204
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.ErpPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login stores the configured endpoint, tenant and token.
func (runner *CommandRunner) Login() error {
	args := []string{"login", "--api", runner.config.APIEndpoint, "--token", runner.config.Token}
	if runner.config.Tenant != "" {
		args = append(args, "--tenant", runner.config.Tenant)
	}

	_, stderr, err := runner.Run(args...)
	if err != nil {
		runner.t.Logf("login failed: %s", stderr)
	}

	return err
}

// AssertJSONOutput verifies command output is valid JSON.
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	if !json.Valid([]byte(strings.TrimSpace(output))) {
		t.Errorf("Output is not valid JSON: %s", output)
	}
}
