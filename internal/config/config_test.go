package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, DefaultRecentWindow, cfg.RecentWindow)
	assert.Equal(t, DefaultMaxSuggestions, cfg.MaxSuggestions)
	assert.Equal(t, DefaultMarkovOrder, cfg.MarkovOrder)
}

func TestLoad_PartialFileFillsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("markov_order: 3\nseed: 42\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MarkovOrder)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
}

func TestLoad_MalformedFileErrors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := &Config{DataDir: "/tmp/x", HistoryLimit: 50, RecentWindow: 10, MaxSuggestions: 3, MarkovOrder: 2}
	require.NoError(t, in.Save(path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDefaultPaths_XDGOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	p := DefaultPaths()
	assert.Equal(t, "/tmp/xdg-config/cmdlearn", p.ConfigDir)
	assert.Equal(t, "/tmp/xdg-data/cmdlearn", p.DataDir)
	assert.Equal(t, "/tmp/xdg-cache/cmdlearn", p.CacheDir)
	assert.Equal(t, "/tmp/xdg-config/cmdlearn/config.yaml", p.ConfigFile())
	assert.Equal(t, "/tmp/xdg-data/cmdlearn/events.db", p.EventsDB())
}
