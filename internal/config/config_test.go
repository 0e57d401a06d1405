package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "./data/gameplex.db", cfg.DatabasePath)
	assert.Equal(t, "./gamelibrary", cfg.GameLibraryPath)
	assert.Equal(t, "./saves", cfg.SavesPath)
	assert.Equal(t, "https://api.rawg.io/api", cfg.RAWGAPIURL)
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 6, cfg.MaxScreenshots)
	assert.Equal(t, 6, cfg.SavesLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SAVES_LIMIT", "3")
	t.Setenv("UPSTREAM_TIMEOUT", "30s")
	t.Setenv("GO_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 3, cfg.SavesLimit)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfigInvalidInt(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.HTTPPort = 0
	assert.Error(t, cfg.Validate())

	cfg.HTTPPort = 8000
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.LogLevel = "debug"
	cfg.SavesLimit = 0
	assert.Error(t, cfg.Validate())
}
