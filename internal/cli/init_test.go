package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencode-ai/themekit/internal/config"
)

func withConfigDir(t *testing.T, dir string) {
	t.Helper()
	original := configDirFunc
	configDirFunc = func() string { return dir }
	t.Cleanup(func() { configDirFunc = original })
}

func withInitForce(t *testing.T, force bool) {
	t.Helper()
	original := initForce
	initForce = force
	t.Cleanup(func() { initForce = original })
}

func TestCreateConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	withConfigDir(t, tempDir)
	withInitForce(t, true)

	result := createConfigFile()
	if result.status != "done" {
		t.Fatalf("expected status 'done', got %q: %s", result.status, result.message)
	}

	configPath := filepath.Join(tempDir, "config.yaml")
	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if !strings.Contains(string(content), "themekit Configuration File") {
		t.Error("config file doesn't contain expected header")
	}
}

func TestCreateConfigFile_ExistingNoForce(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("existing"), 0o644); err != nil {
		t.Fatalf("failed to create existing config: %v", err)
	}
	withConfigDir(t, tempDir)
	withInitForce(t, false)

	result := createConfigFile()
	if result.status != "skipped" {
		t.Errorf("expected status 'skipped', got %q: %s", result.status, result.message)
	}

	content, _ := os.ReadFile(configPath)
	if string(content) != "existing" {
		t.Error("existing config was modified")
	}
}

func TestConfigTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if cfg.Theme.Default != "neutral-pro" {
		t.Errorf("expected neutral-pro default, got %q", cfg.Theme.Default)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("expected database path default to survive the template")
	}

	for _, section := range []string{"theme:", "storage:", "logging:", "daemon:", "tui:"} {
		if !strings.Contains(configTemplate, section) {
			t.Errorf("config template missing section: %s", section)
		}
	}
}
