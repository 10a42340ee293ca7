// Package config handles the XDG configuration directory, file paths and settings.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// SettingsFile is the TOML settings filename.
	SettingsFile = "config.toml"

	// SessionFile is the stored session (token and user) filename.
	SessionFile = "session.json"

	// CacheFile is the default local snapshot database filename.
	CacheFile = "cache.db"

	// APIURLEnv overrides the api_url setting.
	APIURLEnv = "TASKDECK_API_URL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are the values read from config.toml.
	Settings Settings
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdeck or $HOME/.config/taskdeck.
// Settings are loaded from config.toml, which is created with defaults on first use.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	settings, err := LoadOrCreate(cfg.SettingsPath())
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.toml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// CachePath returns the snapshot database path.
// A relative cache_path is resolved against the config directory.
func (c *Config) CachePath() string {
	p := c.Settings.CachePath
	if p == "" {
		p = CacheFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// APIURL returns the API base URL, honouring TASKDECK_API_URL.
func (c *Config) APIURL() string {
	if env := os.Getenv(APIURLEnv); env != "" {
		return env
	}
	if c.Settings.APIURL != "" {
		return c.Settings.APIURL
	}
	return DefaultAPIURL
}

// Timeout returns the per-call API timeout.
func (c *Config) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.Settings.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// Theme returns the configured theme, defaulting to light.
func (c *Config) Theme() string {
	if c.Settings.Theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// RemoveSession deletes the session file.
func (c *Config) RemoveSession() error {
	return os.Remove(c.SessionPath())
}

// SaveSettings writes the current settings back to config.toml.
func (c *Config) SaveSettings() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	return write(c.SettingsPath(), c.Settings)
}
