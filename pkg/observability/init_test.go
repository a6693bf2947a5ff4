package observability_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/redblack/pkg/observability"
)

func TestInit_WithoutEndpoint(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(context.Background(), observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.NotNil(t, providers.Registry)

	ctx, span := providers.Tracer.Start(context.Background(), "insert")
	assert.NotNil(t, ctx)
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_LoggerWritesToConfiguredOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogOutput = &buf
	cfg.ServiceVersion = "2.0.0"

	providers, err := observability.Init(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.Debug("hidden")
	providers.Logger.Info("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
	assert.Contains(t, buf.String(), `"version":"2.0.0"`)
}

func TestInit_WritesMetricsFileOnShutdown(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.MetricsFile = filepath.Join(t.TempDir(), "redblack.prom")
	cfg.LogOutput = &bytes.Buffer{}

	providers, err := observability.Init(context.Background(), cfg)
	require.NoError(t, err)

	metrics, err := observability.NewTreeMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordStats(context.Background(), observability.TreeStats{Inserts: 7, Height: 3, Nodes: 7})

	families, err := providers.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	require.NoError(t, providers.Shutdown(context.Background()))

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total keys inserted")
}

func TestInit_MetricsFileInMissingDir(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.MetricsFile = filepath.Join(t.TempDir(), "missing", "redblack.prom")
	cfg.LogOutput = &bytes.Buffer{}

	providers, err := observability.Init(context.Background(), cfg)
	require.NoError(t, err)

	err = providers.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics file")
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Equal(t,
		map[string]string{"authorization": "Bearer x", "team": "trees"},
		observability.ParseOTLPHeaders(" authorization = Bearer x , team=trees,broken"),
	)
}
