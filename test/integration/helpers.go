//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint   string
	NATSURL    string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:   os.Getenv("ETCDV2_INTEGRATION_ENDPOINT"),
		NATSURL:    os.Getenv("ETCDV2_INTEGRATION_NATS_URL"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("ETCDV2_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the etcdv2 binary
func getBinaryPath() string {
	if path := os.Getenv("ETCDV2_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../etcdv2",
		"./etcdv2",
		"../etcdv2",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "etcdv2" // Fallback to PATH
}

// SkipIfMissingEndpoint skips the test when no etcd endpoint is configured
func (config *TestConfig) SkipIfMissingEndpoint(t *testing.T) {
	t.Helper()

	if config.Endpoint == "" {
		t.Skip("ETCDV2_INTEGRATION_ENDPOINT not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the etcdv2 binary cannot be found
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("etcdv2 binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs the etcdv2 binary against a private config file
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes an etcdv2 command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile, "--output", "plain"}, args...)

	// #nosec G204 -- the binary path comes from the test environment
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}
