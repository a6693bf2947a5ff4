package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/redblack/pkg/config"
)

// cliResult holds the captured streams of one CLI invocation.
type cliResult struct {
	stdout string
	stderr string
}

// runCLI runs the root command with a private config file holding cfg.
func runCLI(t *testing.T, cfg, stdin string, args ...string) (cliResult, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "redblack.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	var stdout, stderr bytes.Buffer

	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.ExecuteContext(context.Background())

	return cliResult{stdout: stdout.String(), stderr: stderr.String()}, err
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.stdout, "redblack "))
}

func TestRootRegistersCommands(t *testing.T) {
	t.Parallel()

	names := make([]string, 0)
	for _, sub := range NewRootCommand().Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{
		"insert", "print", "traverse", "check", "stats", "dump",
		"save", "load", "diff", "render", "bench", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestInvalidConfigIsReported(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "output:\n  format: xml\n", "", "traverse", "1")
	require.ErrorIs(t, err, config.ErrInvalidFormat)
}

func TestVerboseLogsToStderr(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "", "", "-v", "check", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, res.stderr, "command started")
	assert.Contains(t, res.stderr, "command finished")
	assert.Contains(t, res.stderr, "service=redblack")
}

func TestQuietSuppressesLogsAndMessages(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "logging:\n  level: debug\n", "", "-q", "check", "1", "2")
	require.NoError(t, err)
	assert.Empty(t, res.stdout)
	assert.Empty(t, res.stderr)
}

func TestFailuresAreLogged(t *testing.T) {
	t.Parallel()

	res, err := runCLI(t, "logging:\n  format: json\n", "", "print", "x")
	require.ErrorIs(t, err, ErrInvalidKey)
	assert.Contains(t, res.stderr, `"msg":"command failed"`)
}

func TestMetricsFileWritten(t *testing.T) {
	t.Parallel()

	metrics := filepath.Join(t.TempDir(), "redblack.prom")

	_, err := runCLI(t, "telemetry:\n  metrics_file: "+metrics+"\n", "", "traverse", "3", "2", "1")
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total keys inserted")
	assert.Contains(t, string(data), "Rotations performed by direction")
}
