package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	UI        UIConfig        `mapstructure:"ui"`
	Log       LogConfig       `mapstructure:"log"`
	Mock      MockConfig      `mapstructure:"mock"`
}

// ServerConfig locates the controller API.
type ServerConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	TokenEnv string        `mapstructure:"token_env"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// WorkspaceConfig holds the local workspace database.
type WorkspaceConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	RootCloseEvent string `mapstructure:"root_close_event"`
	TruncateToggle int    `mapstructure:"truncate_toggle"`
	TruncateItem   int    `mapstructure:"truncate_item"`
	StartView      string `mapstructure:"start_view"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Debug bool   `mapstructure:"debug"`
}

// MockConfig configures cncdeck-server.
type MockConfig struct {
	Listen string `mapstructure:"listen"`
	DBPath string `mapstructure:"db_path"`
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "cncdeck")
}

// Path returns the config file location.
func Path() string {
	if p := os.Getenv("CNCDECK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "cncdeck", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix CNCDECK_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.token_env", "CNCDECK_TOKEN")
	v.SetDefault("server.token", "")
	v.SetDefault("server.timeout", "10s")
	v.SetDefault("workspace.db_path", filepath.Join(dataDir(), "workspace.db"))
	v.SetDefault("ui.root_close_event", "click")
	v.SetDefault("ui.truncate_toggle", 24)
	v.SetDefault("ui.truncate_item", 36)
	v.SetDefault("ui.start_view", "macros")
	v.SetDefault("log.path", filepath.Join(dataDir(), "cncdeck.log"))
	v.SetDefault("log.debug", false)
	v.SetDefault("mock.listen", ":8000")
	v.SetDefault("mock.db_path", filepath.Join(dataDir(), "mock.db"))

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("CNCDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine; a broken one is not
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(Path()); statErr == nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.UI.RootCloseEvent != "click" && c.UI.RootCloseEvent != "mousedown" {
		return Config{}, fmt.Errorf("ui.root_close_event: want click or mousedown, got %q", c.UI.RootCloseEvent)
	}
	return c, nil
}

// EnsureFile writes cfg to Path when no config file exists yet, so first
// runs leave an editable config.toml behind. It reports whether it wrote.
func EnsureFile(cfg Config) (bool, error) {
	_, err := os.Stat(Path())
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := Save(cfg); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The token is written in plain text; prefer the env var or the secrets store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.base_url", cfg.Server.BaseURL)
	v.Set("server.token_env", cfg.Server.TokenEnv)
	v.Set("server.token", cfg.Server.Token)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("workspace.db_path", cfg.Workspace.DBPath)
	v.Set("ui.root_close_event", cfg.UI.RootCloseEvent)
	v.Set("ui.truncate_toggle", cfg.UI.TruncateToggle)
	v.Set("ui.truncate_item", cfg.UI.TruncateItem)
	v.Set("ui.start_view", cfg.UI.StartView)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.debug", cfg.Log.Debug)
	v.Set("mock.listen", cfg.Mock.Listen)
	v.Set("mock.db_path", cfg.Mock.DBPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ResolveToken picks the API token: the env var named by server.token_env,
// then lookup (usually the secrets store), then server.token.
func (c Config) ResolveToken(lookup func(baseURL string) (string, error)) string {
	if c.Server.TokenEnv != "" {
		if tok := strings.TrimSpace(os.Getenv(c.Server.TokenEnv)); tok != "" {
			return tok
		}
	}
	if lookup != nil {
		if tok, err := lookup(c.Server.BaseURL); err == nil && tok != "" {
			return tok
		}
	}
	return strings.TrimSpace(c.Server.Token)
}
