package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.NotEmpty(t, cfg.Feeds)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
feeds = ["https://feeds.example.com/a.xml"]

[api]
base_url = "https://research.example.com"
timeout_seconds = 10

[poll]
interval_seconds = 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://research.example.com", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, []string{"https://feeds.example.com/a.xml"}, cfg.Feeds)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("api = [broken"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RYEKU_API_URL", "https://override.example.com")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.com", cfg.API.BaseURL)
}
