package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, registry.DefaultThemeID, cfg.Theme.Default)
	assert.Equal(t, 16*time.Millisecond, cfg.Theme.TransitionDelay)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "127.0.0.1:50061", cfg.Daemon.Address())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
theme:
  default: ocean
  locked: forest
  transition_delay: 40ms
storage:
  backend: file
  dir: /tmp/themes
logging:
  level: debug
  format: json
daemon:
  port: 6000
tui:
  show_variables: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ocean", cfg.Theme.Default)
	assert.Equal(t, "forest", cfg.Theme.Locked)
	assert.Equal(t, 40*time.Millisecond, cfg.Theme.TransitionDelay)
	assert.Equal(t, "themekit:theme-config", cfg.Theme.StorageKey)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/themes", cfg.Storage.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1", cfg.Daemon.Host)
	assert.Equal(t, 6000, cfg.Daemon.Port)
	assert.False(t, cfg.TUI.ShowVariables)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "theme:\n  default: ocean\n")
	t.Setenv("THEMEKIT_THEME_LOCKED", "sunset")
	t.Setenv("THEMEKIT_STORAGE_BACKEND", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sunset", cfg.Theme.Locked)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultThemeID, cfg.Theme.Default)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty default", func(c *Config) { c.Theme.Default = " " }, "theme.default"},
		{"negative delay", func(c *Config) { c.Theme.TransitionDelay = -time.Second }, "theme.transition_delay"},
		{"empty key", func(c *Config) { c.Theme.StorageKey = "" }, "theme.storage_key"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"file without dir", func(c *Config) { c.Storage.Backend = BackendFile; c.Storage.Dir = "" }, "storage.dir"},
		{"sqlite without path", func(c *Config) { c.Storage.DatabasePath = "" }, "storage.database_path"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad port", func(c *Config) { c.Daemon.Port = 70000 }, "daemon.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs *models.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs.Errors, 1)
			assert.Equal(t, tt.field, verrs.Errors[0].Field)
		})
	}
}

func TestDefaultDirsHonorXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/config/themekit", DefaultConfigDir())
	assert.Equal(t, "/custom/data/themekit", DefaultDataDir())
}
