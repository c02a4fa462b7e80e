package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/user-directory-service/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	yaml := `
app:
  name: user-directory-service
  version: 0.1.0
  env: test
  port: 18080

logger:
  level: info
  format: json
  output_target: stdout
  time_format: rfc3339

upstream:
  base_url: https://jsonplaceholder.typicode.com
  timeout: 2s

cache:
  stale_time: 10s
  gc_time: 1m

view:
  default_limit: 10
  page_sizes: [10, 20]
`
	path := writeTempConfig(t, yaml)

	t.Setenv("APP_UPSTREAM_BASE_URL", "http://directory.internal:3000")
	t.Setenv("APP_CACHE_BACKEND", "redis")
	t.Setenv("APP_REDIS_HOST", "cache.internal")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Equal(t, "http://directory.internal:3000", cfg.Upstream.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "X-Total-Count", cfg.Upstream.TotalCountHeader)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 10*time.Second, cfg.Cache.StaleTime)
	assert.Equal(t, time.Minute, cfg.Cache.GCTime)
	assert.Equal(t, 10, cfg.View.DefaultLimit)
	assert.Equal(t, []int{10, 20}, cfg.View.PageSizes)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestConfigLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://jsonplaceholder.typicode.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.StaleTime)
	assert.Equal(t, 5*time.Minute, cfg.Cache.GCTime)
	assert.Equal(t, 5, cfg.View.DefaultLimit)
	assert.Equal(t, 100, cfg.View.MaxLimit)
	assert.Equal(t, []int{5, 10}, cfg.View.PageSizes)
	assert.Equal(t, 3*time.Second, cfg.View.RenderTimeout)
}

func TestConfigLoad_MissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"gc_before_stale", "cache:\n  stale_time: 1m\n  gc_time: 10s\n"},
		{"unknown_backend", "cache:\n  backend: memcached\n"},
		{"bad_base_url", "upstream:\n  base_url: not a url\n"},
		{"zero_render_timeout", "view:\n  render_timeout: 0s\n"},
		{"max_below_default", "view:\n  default_limit: 10\n  max_limit: 5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeTempConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}
