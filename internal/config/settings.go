package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultAPIURL  = "http://localhost:5001"
	DefaultTimeout = 10 * time.Second

	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Settings is the content of config.toml.
type Settings struct {
	APIURL    string `toml:"api_url"`
	Timeout   string `toml:"timeout"`
	Theme     string `toml:"theme"`
	CachePath string `toml:"cache_path"`
	LogLevel  string `toml:"log_level"`
}

// LoadOrCreate reads settings from path, writing defaults there if the file
// does not exist yet. Missing keys keep their default values.
func LoadOrCreate(path string) (Settings, error) {
	s := defaultSettings()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return s, err
		}
		if err := write(path, s); err != nil {
			return s, err
		}
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		s.Theme = ThemeLight
	}
	return s, nil
}

func write(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func defaultSettings() Settings {
	return Settings{
		APIURL:    DefaultAPIURL,
		Timeout:   DefaultTimeout.String(),
		Theme:     ThemeLight,
		CachePath: CacheFile,
		LogLevel:  "info",
	}
}
