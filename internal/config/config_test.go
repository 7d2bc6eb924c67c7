package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.Equal(t, "gallery-images", cfg.StorageBucket)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "24")
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
}
