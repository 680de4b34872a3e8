package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Batman16012001/Locally-Connector-New/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `{
		"mongodb": {"uri": "mongodb://localhost:27017"}
	}`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "locally-connector", cfg.AppName)
	assert.Equal(t, "locally_staging", cfg.MongoDB.DB)
	assert.Equal(t, 500, cfg.Ingest.ChunkSize)
	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.Equal(t, 5, cfg.Ingest.RateLimitRequests)
	assert.Equal(t, 60, cfg.Ingest.RateLimitPeriod)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Ingest.TempDir)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"mongodb": {"uri": "mongodb://db:27017", "db": "connector"},
		"ingest": {"chunk_size": 100, "workers": 2, "rate_limit_requests": 10, "rate_limit_period": 30},
		"logging": {"level": "debug"}
	}`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "connector", cfg.MongoDB.DB)
	assert.Equal(t, 100, cfg.Ingest.ChunkSize)
	assert.Equal(t, 2, cfg.Ingest.Workers)
	assert.Equal(t, 10, cfg.Ingest.RateLimitRequests)
	assert.Equal(t, 30, cfg.Ingest.RateLimitPeriod)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"port": }`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing config file")
}
