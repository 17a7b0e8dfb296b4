package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
host = "localhost"
port = 9000
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "gymsessions"
redis_host = "localhost"
redis_port = "6379"
history_default_page_size = 10
allowed_origins = ["http://localhost:8080"]

[production]
host = "0.0.0.0"
port = 9001
log_level = "info"
logs_path = "/var/log/gymsessions/service.log"
postgres_host = "db"
postgres_port = "5432"
postgres_db_name = "gymsessions"
history_default_page_size = 500
history_max_page_size = 100
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	path := writeTestConfig(t, testConfigToml)

	cfg, err := Load("dev", path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.Equal(t, "gymsessions", cfg.PostgresDBName)
	assert.Equal(t, 10, cfg.HistoryDefaultPageSize)
	// defaults
	assert.Equal(t, defaultHistoryMaxPageSize, cfg.HistoryMaxPageSize)
	assert.Equal(t, defaultWriteRateLimit, cfg.WriteRateLimitAllowedPerMin)
	assert.Equal(t, defaultTokenCacheTTL, cfg.AuthTokenCacheTTLSeconds)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidProduction(t *testing.T) {
	path := writeTestConfig(t, testConfigToml)

	// default page size above the max page size
	cfg, err := Load("production", path)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_UnknownEnvAndMissingFile(t *testing.T) {
	path := writeTestConfig(t, testConfigToml)

	_, err := Load("staging", path)
	require.Error(t, err)

	_, err = Load("dev", filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestToml_Get_MissingSection(t *testing.T) {
	tml := &Toml{Development: &Config{Port: 1}}

	_, err := tml.Get("prod")
	require.Error(t, err)

	cfg, err := tml.Get("DEV")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
}
