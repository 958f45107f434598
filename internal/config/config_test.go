package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/pipemeter/internal/config"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "pipemeter")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.LineMode)
	assert.Nil(t, cfg.Defaults.RateLimit)
	assert.Nil(t, cfg.Defaults.Hash)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
line_mode = true
null = false
direct_io = true
rate_limit = "10M"
interval = "500ms"
hash = "xxhash"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.LineMode)
	assert.True(t, *cfg.Defaults.LineMode)

	require.NotNil(t, cfg.Defaults.Null)
	assert.False(t, *cfg.Defaults.Null)

	require.NotNil(t, cfg.Defaults.DirectIO)
	assert.True(t, *cfg.Defaults.DirectIO)

	require.NotNil(t, cfg.Defaults.RateLimit)
	assert.Equal(t, "10M", *cfg.Defaults.RateLimit)

	require.NotNil(t, cfg.Defaults.Interval)
	assert.Equal(t, "500ms", *cfg.Defaults.Interval)

	require.NotNil(t, cfg.Defaults.Hash)
	assert.Equal(t, "xxhash", *cfg.Defaults.Hash)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
rate_limit = "1G"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Nil(t, cfg.Defaults.LineMode)
	assert.Nil(t, cfg.Defaults.DirectIO)
	require.NotNil(t, cfg.Defaults.RateLimit)
	assert.Equal(t, "1G", *cfg.Defaults.RateLimit)
}

func TestLoad_InvalidTOML(t *testing.T) {
	writeConfig(t, "invalid [[[")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/pipemeter/config.toml", config.Path())
}
