package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/trade")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 25.0, cfg.FallbackSpeedKmh)
	assert.Equal(t, 50000.0, cfg.MaxDetourMeters)
	assert.Equal(t, 50, cfg.CandidateLimit)
	assert.Equal(t, 30, cfg.TopK)
	assert.Equal(t, CachePostgres, cfg.CacheBackend)
	assert.Equal(t, "https://api.openrouteservice.org", cfg.ORSBaseURL)
	assert.False(t, cfg.PreciseRouting())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FALLBACK_SPEED_KMH", "40")
	t.Setenv("TOP_K", "10")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("ORS_API_KEY", " key ")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 40.0, cfg.FallbackSpeedKmh)
	assert.Equal(t, 10, cfg.TopK)
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
	assert.True(t, cfg.PreciseRouting())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("FALLBACK_SPEED_KMH", "0")
	t.Setenv("CACHE_BACKEND", "memcached")

	_, _, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FALLBACK_SPEED_KMH")
	assert.Contains(t, err.Error(), "CACHE_BACKEND")
}
