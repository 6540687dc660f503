package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, "emotisense", cfg.MongoDB)
	assert.Equal(t, "uploads", cfg.MinioBucket)
	assert.Equal(t, ScopeShared, cfg.GalleryScope)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay)
	assert.False(t, cfg.MinioUseSSL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GALLERY_SCOPE", ScopePerUser)
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("UPSTREAM_RETRY_ATTEMPTS", "5")
	t.Setenv("UPSTREAM_RETRY_BASE_DELAY", "2s")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, ScopePerUser, cfg.GalleryScope)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 2*time.Second, cfg.RetryBaseDelay)
	assert.True(t, cfg.MinioUseSSL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("UPSTREAM_RETRY_ATTEMPTS", "many")

	cfg := Load()

	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.RetryAttempts)
}
