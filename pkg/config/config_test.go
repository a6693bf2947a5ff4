package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/redblack/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".redblack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadConfig_ValidFileUnmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `tree:
  order: PreOrder
output:
  format: table
  color: false
snapshot:
  codec: gob
  compress: true
  hibernation_threshold: 10
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: localhost:4317
  otlp_insecure: true
  sample_ratio: 0.25
  metrics_file: /tmp/redblack.prom
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "preorder", cfg.Tree.Order)
	assert.Equal(t, config.FormatTable, cfg.Output.Format)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, "gob", cfg.Snapshot.Codec)
	assert.True(t, cfg.Snapshot.Compress)
	assert.Equal(t, 10, cfg.Snapshot.HibernationThreshold)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 1e-9)
	assert.Equal(t, "/tmp/redblack.prom", cfg.Telemetry.MetricsFile)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want    error
		name    string
		content string
	}{
		{name: "order", content: "tree:\n  order: levelorder\n", want: config.ErrInvalidOrder},
		{name: "format", content: "output:\n  format: xml\n", want: config.ErrInvalidFormat},
		{name: "codec", content: "snapshot:\n  codec: protobuf\n", want: config.ErrInvalidCodec},
		{name: "threshold", content: "snapshot:\n  hibernation_threshold: -1\n", want: config.ErrInvalidThreshold},
		{name: "log level", content: "logging:\n  level: chatty\n", want: config.ErrInvalidLogLevel},
		{name: "log format", content: "logging:\n  format: xml\n", want: config.ErrInvalidLogFormat},
		{name: "sample ratio", content: "telemetry:\n  sample_ratio: 2\n", want: config.ErrInvalidRatio},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tc.content))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "tree: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

//nolint:paralleltest // t.Setenv cannot run in parallel.
func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("REDBLACK_OUTPUT_FORMAT", "json")
	t.Setenv("REDBLACK_SNAPSHOT_COMPRESS", "true")
	t.Setenv("REDBLACK_TELEMETRY_METRICS_FILE", "/var/tmp/rb.prom")

	cfg, err := config.LoadConfig(writeConfig(t, "output:\n  format: table\n"))
	require.NoError(t, err)

	assert.Equal(t, config.FormatJSON, cfg.Output.Format)
	assert.True(t, cfg.Snapshot.Compress)
	assert.Equal(t, "/var/tmp/rb.prom", cfg.Telemetry.MetricsFile)
}
