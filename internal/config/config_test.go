package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "ayiah.toml")

	manager, err := NewManager(path)

	require.NoError(t, err)
	assert.FileExists(t, path)

	cfg := manager.Get()
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 7590, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "tmdb", cfg.Scrape.DefaultProvider)
	assert.Equal(t, "hard_link", cfg.Scrape.DefaultOrganizeMethod)
	assert.Equal(t, "127.0.0.1:7590", manager.Addr())
}

func TestManagerReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ayiah.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000

[scraper]
tmdb_api_key = "from-file"

[scrape]
default_provider = "tvdb"
fallback_providers = ["tmdb", "anilist"]
`), 0o644))

	manager, err := NewManager(path)

	require.NoError(t, err)
	cfg := manager.Get()
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Scraper.TmdbAPIKey)
	assert.Equal(t, "tvdb", cfg.Scrape.DefaultProvider)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 40, cfg.Scraper.MaxRequests)
}

func TestManagerEnvOverridesFile(t *testing.T) {
	t.Setenv("AYIAH__SERVER__PORT", "8123")
	t.Setenv("AYIAH__SCRAPER__TMDB_API_KEY", "from-env")

	manager, err := NewManager(filepath.Join(t.TempDir(), "ayiah.toml"))

	require.NoError(t, err)
	cfg := manager.Get()
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Scraper.TmdbAPIKey)
}

func TestManagerUpdateSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ayiah.toml")
	manager, err := NewManager(path)
	require.NoError(t, err)

	manager.Update(func(cfg *AppConfig) {
		cfg.Scrape.DefaultOrganizeMethod = "copy"
		cfg.Organizer.TargetDir = "/library"
	})
	require.NoError(t, manager.Save())

	// A fresh manager sees the persisted values.
	fresh, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, "copy", fresh.Get().Scrape.DefaultOrganizeMethod)
	assert.Equal(t, "/library", fresh.Get().Organizer.TargetDir)

	// Reload drops unsaved in-memory changes.
	fresh.Update(func(cfg *AppConfig) { cfg.Scrape.DefaultOrganizeMethod = "move" })
	require.NoError(t, fresh.Reload())
	assert.Equal(t, "copy", fresh.Get().Scrape.DefaultOrganizeMethod)
}

func TestScrapeConfigProviders(t *testing.T) {
	cfg := ScrapeConfig{
		DefaultProvider:   "TMDB",
		FallbackProviders: []string{"tvdb", " tmdb ", "", "anilist", "tvdb"},
	}

	// Default first, fallbacks in order, duplicates and blanks dropped.
	assert.Equal(t, []string{"tmdb", "tvdb", "anilist"}, cfg.Providers())
}

func TestDataDirHonorsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AYIAH_DATA_DIR", dir)

	assert.Equal(t, dir, DataDir())
	assert.Equal(t, filepath.Join(dir, "config", "ayiah.toml"), DefaultConfigPath())
}
