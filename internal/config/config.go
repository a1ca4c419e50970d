// Package config loads themekit configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/opencode-ai/themekit/internal/applicator"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/opencode-ai/themekit/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. THEMEKIT_THEME_LOCKED.
const EnvPrefix = "THEMEKIT"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the full themekit configuration.
type Config struct {
	Theme   ThemeConfig   `mapstructure:"theme"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
	TUI     TUIConfig     `mapstructure:"tui"`
}

// ThemeConfig controls theme selection and application.
type ThemeConfig struct {
	Default         string        `mapstructure:"default"`
	Locked          string        `mapstructure:"locked"`
	TransitionDelay time.Duration `mapstructure:"transition_delay"`
	StorageKey      string        `mapstructure:"storage_key"`
}

// StorageConfig selects where theme state is persisted.
type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	Dir          string `mapstructure:"dir"`
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DaemonConfig controls the gRPC daemon listener.
type DaemonConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Address returns host:port.
func (d DaemonConfig) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// TUIConfig controls the terminal preview.
type TUIConfig struct {
	ShowVariables bool `mapstructure:"show_variables"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		Theme: ThemeConfig{
			Default:         registry.DefaultThemeID,
			TransitionDelay: applicator.DefaultTransitionDelay,
			StorageKey:      store.DefaultKey,
		},
		Storage: StorageConfig{
			Backend:      BackendSQLite,
			Dir:          dataDir,
			DatabasePath: filepath.Join(dataDir, "themekit.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Daemon: DaemonConfig{
			Host: "127.0.0.1",
			Port: 50061,
		},
		TUI: TUIConfig{
			ShowVariables: true,
		},
	}
}

// DefaultConfigDir returns the directory holding config.yaml.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "themekit")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".themekit"
	}
	return filepath.Join(home, ".config", "themekit")
}

// DefaultDataDir returns the directory holding persisted state.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "themekit")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".themekit"
	}
	return filepath.Join(home, ".local", "share", "themekit")
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("theme.default", cfg.Theme.Default)
	v.SetDefault("theme.locked", cfg.Theme.Locked)
	v.SetDefault("theme.transition_delay", cfg.Theme.TransitionDelay)
	v.SetDefault("theme.storage_key", cfg.Theme.StorageKey)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.database_path", cfg.Storage.DatabasePath)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("daemon.host", cfg.Daemon.Host)
	v.SetDefault("daemon.port", cfg.Daemon.Port)
	v.SetDefault("tui.show_variables", cfg.TUI.ShowVariables)
}

// Load reads configuration from path (or the default location when empty),
// applies THEMEKIT_* environment overrides and validates the result.
// A missing default config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	errs := &models.ValidationErrors{}

	if strings.TrimSpace(c.Theme.Default) == "" {
		errs.AddMessage("theme.default", "is required")
	}
	if c.Theme.TransitionDelay < 0 {
		errs.AddMessage("theme.transition_delay", "must not be negative")
	}
	if strings.TrimSpace(c.Theme.StorageKey) == "" {
		errs.AddMessage("theme.storage_key", "is required")
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			errs.AddMessage("storage.dir", "is required for the file backend")
		}
	case BackendSQLite:
		if c.Storage.DatabasePath == "" {
			errs.AddMessage("storage.database_path", "is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		errs.AddMessage("storage.backend", fmt.Sprintf("unknown backend %q", c.Storage.Backend))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "":
	default:
		errs.AddMessage("logging.level", fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json", "":
	default:
		errs.AddMessage("logging.format", fmt.Sprintf("unknown format %q", c.Logging.Format))
	}

	if c.Daemon.Port < 0 || c.Daemon.Port > 65535 {
		errs.AddMessage("daemon.port", "must be between 0 and 65535")
	}

	return errs.Err()
}
