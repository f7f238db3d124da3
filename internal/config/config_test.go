package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, 10*time.Second, cfg.HealthInterval())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().APIURL, cfg.APIURL)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.APIURL = "https://intake.example.com"
	cfg.PageSize = 12
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://intake.example.com", loaded.APIURL)
	assert.Equal(t, 12, loaded.PageSize)
	assert.Equal(t, "127.0.0.1:3000", loaded.CallbackAddr)
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("API_URL", "http://10.0.0.5:5000")
	t.Setenv("PAGE_SIZE", "9")
	t.Setenv("HEALTH_INTERVAL_SECONDS", "not-a-number")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "http://10.0.0.5:5000", cfg.APIURL)
	assert.Equal(t, 9, cfg.PageSize)
	assert.Equal(t, 10, cfg.HealthIntervalSeconds)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing url", func(c *Config) { c.APIURL = "" }, true},
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://x" }, true},
		{"no host", func(c *Config) { c.APIURL = "http://" }, true},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
		{"zero interval", func(c *Config) { c.HealthIntervalSeconds = 0 }, true},
		{"no export dir", func(c *Config) { c.ExportDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveWritesBackToLoadedPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	cfg.PageSize = 8
	require.NoError(t, cfg.Save())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 8, loaded.PageSize)
}

func TestWithSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CallbackAddr = "127.0.0.1:4000"

	next, err := cfg.WithSettings(Settings{
		APIURL:                " https://intake.example.com/ ",
		DownloadsDir:          "/tmp/dl",
		ExportDir:             "/tmp/xl",
		PageSize:              10,
		HealthIntervalSeconds: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://intake.example.com", next.APIURL)
	assert.Equal(t, 10, next.PageSize)
	assert.Equal(t, 30*time.Second, next.HealthInterval())
	assert.Equal(t, "127.0.0.1:4000", next.CallbackAddr, "fields outside the settings are kept")
	assert.Equal(t, "http://localhost:5000", cfg.APIURL, "receiver is unchanged")

	s := next.Settings()
	s.PageSize = 0
	_, err = next.WithSettings(s)
	assert.Error(t, err)
	assert.Equal(t, 10, next.PageSize)
}
