package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{"APP_ENV", "GRPC_PORT", "REDIS_ADDR", "UPSTREAM_TIMEOUT", "CACHE_TTL", "GEO_BOUNDARY_URL"} {
			t.Setenv(k, "")
		}

		cfg := LoadFromEnv()

		assert.Equal(t, "development", cfg.AppEnv)
		assert.Equal(t, "sqlite3", cfg.DBDriver)
		assert.Equal(t, 50051, cfg.GRPCPort)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
		assert.Equal(t, DefaultGeoBoundaryURL, cfg.GeoBoundaryURL)
		assert.False(t, cfg.CacheEnabled())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("GRPC_PORT", "6000")
		t.Setenv("GRPC_REFLECTION_ENABLED", "true")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("UPSTREAM_BASE_URL", "https://api.example.org")
		t.Setenv("UPSTREAM_TIMEOUT", "3s")
		t.Setenv("CACHE_TTL", "1h")

		cfg := LoadFromEnv()

		assert.Equal(t, "production", cfg.AppEnv)
		assert.Equal(t, 6000, cfg.GRPCPort)
		assert.True(t, cfg.GRPCReflectionEnabled)
		assert.True(t, cfg.CacheEnabled())
		assert.Equal(t, "https://api.example.org", cfg.UpstreamBaseURL)
		assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, time.Hour, cfg.CacheTTL)
	})

	t.Run("unparsable values fall back", func(t *testing.T) {
		t.Setenv("GRPC_PORT", "abc")
		t.Setenv("GRPC_REFLECTION_ENABLED", "maybe")
		t.Setenv("UPSTREAM_TIMEOUT", "-5s")
		t.Setenv("CACHE_TTL", "soon")

		cfg := LoadFromEnv()

		assert.Equal(t, 50051, cfg.GRPCPort)
		assert.False(t, cfg.GRPCReflectionEnabled)
		assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	})
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := NewLogger(&Config{AppEnv: env})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
