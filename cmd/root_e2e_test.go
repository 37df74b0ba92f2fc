package cmd_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// testBinaryName is the name of the test binary for E2E tests.
	testBinaryName = "httplog-test"
)

// TestMain builds the binary before running E2E tests.
func TestMain(m *testing.M) {
	// Build the binary for testing.
	//nolint:noctx // TestMain doesn't have access to context, and build is needed before tests run.
	buildCmd := exec.Command("go", "build", "-o", testBinaryName, "../.")
	if err := buildCmd.Run(); err != nil {
		os.Exit(1)
	}

	// Run tests.
	code := m.Run()

	// Cleanup.
	_ = os.Remove(testBinaryName)

	os.Exit(code)
}

// runBinary runs the test binary and returns its stdout, stderr and error.
func runBinary(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(t.Context(), "./"+testBinaryName, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	err := os.WriteFile(configPath, []byte(content), 0o644) //nolint:gosec // It's a test file.
	require.NoError(t, err)

	return configPath
}

func newJSONServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Method", r.Method)
		_, _ = w.Write([]byte(`{"echo":` + string(body) + `}`))
	}))
	t.Cleanup(server.Close)

	return server
}

// TestE2E_Verbosity tests the log produced for each verbosity level.
func TestE2E_Verbosity(t *testing.T) {
	t.Parallel()

	server := newJSONServer(t)

	tests := []struct {
		name             string
		flags            []string
		expectedLog      []string
		unexpectedLog    []string
		expectedLogEmpty bool
	}{
		{
			name:  "normal from config",
			flags: []string{},
			expectedLog: []string{
				"--> POST " + server.URL + "/items HTTP/1.1",
				"Content-Type: application/json",
				`{"id":7}`,
				"--> END POST",
				"X-Request-Method: POST",
				`{"echo":{"id":7}}`,
				"<-- END HTTP",
			},
		},
		{
			name:  "headers only",
			flags: []string{"--verbosity", "headers"},
			expectedLog: []string{
				"--> POST " + server.URL + "/items HTTP/1.1",
				"X-Request-Method: POST",
				"<-- END HTTP",
			},
			unexpectedLog: []string{`{"id":7}`, `{"echo":{"id":7}}`},
		},
		{
			name:  "body only",
			flags: []string{"-v", "body"},
			expectedLog: []string{
				`{"id":7}`,
				`{"echo":{"id":7}}`,
			},
			unexpectedLog: []string{"X-Request-Method: POST"},
		},
		{
			name:             "none",
			flags:            []string{"-v", "none"},
			expectedLogEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logPath := filepath.Join(t.TempDir(), "http.log")
			configPath := writeConfig(t, "verbosity: normal\nlog_file: "+logPath+"\n")

			args := append([]string{
				"--config", configPath,
				"-H", "Content-Type: application/json",
				"-d", `{"id":7}`,
				server.URL + "/items",
			}, tt.flags...)

			stdout, stderr, err := runBinary(t, args...)
			require.NoError(t, err, "stderr: %s", stderr)

			assert.JSONEq(t, `{"echo":{"id":7}}`, stdout)

			content, err := os.ReadFile(logPath)
			if tt.expectedLogEmpty {
				if err == nil {
					assert.Empty(t, string(content))
				}

				return
			}

			require.NoError(t, err)

			for _, expected := range tt.expectedLog {
				assert.Contains(t, string(content), expected)
			}

			for _, unexpected := range tt.unexpectedLog {
				assert.NotContains(t, string(content), unexpected)
			}
		})
	}
}

// TestE2E_InvalidValues tests that invalid flag values terminate the program with an error.
func TestE2E_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags []string
	}{
		{name: "invalid verbosity", flags: []string{"--verbosity", "loud", "http://localhost"}},
		{name: "invalid timeout", flags: []string{"--timeout", "soon", "http://localhost"}},
		{name: "missing URL", flags: []string{}},
		{name: "malformed header", flags: []string{"-H", "broken", "http://localhost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			configPath := writeConfig(t, "log_level: info\n")

			_, _, err := runBinary(t, append([]string{"--config", configPath}, tt.flags...)...)
			require.Error(t, err)
		})
	}
}

// TestE2E_ConfigInitAndVersion tests the config init and version subcommands.
func TestE2E_ConfigInitAndVersion(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "httplog.yaml")

	_, stderr, err := runBinary(t, "config", "init", configPath)
	require.NoError(t, err, "stderr: %s", stderr)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "verbosity: normal")

	_, _, err = runBinary(t, "config", "init", configPath)
	require.Error(t, err)

	stdout, _, err := runBinary(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "version: "))
}
