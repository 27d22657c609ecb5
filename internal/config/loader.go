package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/tailview"
	configFile = "config.json"
)

// ConfigPath returns the default config file location.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(configDir, configFile)
	}
	return filepath.Join(home, configDir, configFile)
}

// Load reads the config from ConfigPath(). A missing file yields defaults.
func Load() (*Config, error) {
	cfg, err := LoadFrom(ConfigPath())
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFrom reads the config at path, layering it over the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := Default()
	if err := merge(cfg, fc); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies fields present in fc onto cfg.
func merge(cfg *Config, fc fileConfig) error {
	if len(fc.Watch.Dirs) > 0 {
		cfg.Watch.Dirs = expandDirs(fc.Watch.Dirs)
	}
	if fc.Watch.Extensions != nil {
		cfg.Watch.Extensions = fc.Watch.Extensions
	}
	if fc.Watch.QueueSize != nil {
		cfg.Watch.QueueSize = *fc.Watch.QueueSize
	}

	if fc.Cache.CapacityBytes != nil {
		cfg.Cache.CapacityBytes = *fc.Cache.CapacityBytes
	}
	if fc.Cache.PrefetchFactor != nil {
		cfg.Cache.PrefetchFactor = *fc.Cache.PrefetchFactor
	}
	if fc.Cache.PrefetchMax != nil {
		cfg.Cache.PrefetchMax = *fc.Cache.PrefetchMax
	}
	if fc.Cache.PrefetchQueue != nil {
		cfg.Cache.PrefetchQueue = *fc.Cache.PrefetchQueue
	}

	if fc.UI.Theme != "" {
		cfg.UI.Theme = fc.UI.Theme
	}
	if fc.UI.Follow != nil {
		cfg.UI.Follow = *fc.UI.Follow
	}
	if fc.UI.TickInterval != "" {
		d, err := time.ParseDuration(fc.UI.TickInterval)
		if err != nil {
			return fmt.Errorf("ui.tickInterval: %w", err)
		}
		cfg.UI.TickInterval = d
	}
	return nil
}

// expandDirs resolves a leading ~ in each directory.
func expandDirs(dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = ExpandPath(d)
	}
	return out
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
