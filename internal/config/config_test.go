package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPServer.Address)
	assert.Equal(t, 8, cfg.URLShortener.CodeLength)
	assert.Equal(t, 5, cfg.URLShortener.MaxRetries)
	assert.Equal(t, 2048, cfg.URLShortener.MaxURLLength)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 90, cfg.Retention.DaysToKeep)
	assert.Equal(t, 30, cfg.Analytics.DefaultDays)
	assert.Equal(t, 10, cfg.Analytics.TopReferrers)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
env: local
http_server:
  address: ":9090"
database:
  url: "sqlite://file::memory:?cache=shared"
url_shortener:
  code_length: 10
auth:
  jwt_secret: from-file
retention:
  days_to_keep: 30
  sweep_interval: 1h
`)
	t.Setenv("SHORT_CODE_MAX_RETRIES", "7")
	unsetEnv(t, "JWT_SECRET")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ":9090", cfg.HTTPServer.Address)
	assert.Equal(t, "sqlite://file::memory:?cache=shared", cfg.Database.URL)
	assert.Equal(t, 10, cfg.URLShortener.CodeLength)
	assert.Equal(t, 7, cfg.URLShortener.MaxRetries)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 30, cfg.Retention.DaysToKeep)
	assert.Equal(t, time.Hour, cfg.Retention.SweepInterval)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "env: local\n"},
		{"short code length", "auth:\n  jwt_secret: s\nurl_shortener:\n  code_length: 2\n"},
		{"long code length", "auth:\n  jwt_secret: s\nurl_shortener:\n  code_length: 17\n"},
		{"negative retention", "auth:\n  jwt_secret: s\nretention:\n  days_to_keep: -1\n"},
		{"analytics window", "auth:\n  jwt_secret: s\nanalytics:\n  default_days: 400\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, "JWT_SECRET")
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
