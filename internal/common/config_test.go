package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ankigen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  timeout_seconds: 10
run:
  use_cache: false
  max_cache_age_days: 7
retry:
  fetch:
    max_attempts: 5
    backoff: exponential
    delay_seconds: 1
    cap_seconds: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.API.TimeoutSeconds)
	assert.Equal(t, "https://api.wanikani.com/v2", cfg.API.BaseURL)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)

	require.NotNil(t, cfg.Run.UseCache)
	assert.False(t, *cfg.Run.UseCache)
	require.NotNil(t, cfg.Run.MaxCacheAgeDays)
	assert.Equal(t, 7, *cfg.Run.MaxCacheAgeDays)

	assert.Equal(t, 5, cfg.Retry.Fetch.MaxAttempts)
	assert.Equal(t, 3, cfg.Retry.Persist.MaxAttempts)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
run:
  use_cach: true
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, KindConfig, KindOf(err))
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, KindConfig, KindOf(err))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WANIKANI_TOKEN", "tok-from-env")
	t.Setenv("DATABASE_URL", "user:pw@tcp(db:3306)/wanikani")

	path := writeConfig(t, `
api:
  token: tok-from-file
storage:
  driver: mysql
  dsn: file-dsn
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-from-env", cfg.API.Token)
	assert.Equal(t, "user:pw@tcp(db:3306)/wanikani", cfg.Storage.DSN)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"empty dsn", func(c *Config) { c.Storage.DSN = "" }},
		{"negative cache age", func(c *Config) { n := -1; c.Run.MaxCacheAgeDays = &n }},
		{"zero attempts", func(c *Config) { c.Retry.Persist.MaxAttempts = 0 }},
		{"bad backoff", func(c *Config) { c.Retry.Fetch.Backoff = "jitter" }},
		{"zero timeout", func(c *Config) { c.API.TimeoutSeconds = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, KindConfig, KindOf(err))
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}
