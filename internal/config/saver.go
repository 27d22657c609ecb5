package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// fileConfig is the JSON-marshaling intermediary that uses string durations
// and optional fields, so a partial file keeps the defaults it omits.
type fileConfig struct {
	Watch fileWatchConfig `json:"watch"`
	Cache fileCacheConfig `json:"cache"`
	UI    fileUIConfig    `json:"ui"`
}

type fileWatchConfig struct {
	Dirs       []string `json:"dirs,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
	QueueSize  *int     `json:"queueSize,omitempty"`
}

type fileCacheConfig struct {
	CapacityBytes  *int64 `json:"capacityBytes,omitempty"`
	PrefetchFactor *int   `json:"prefetchFactor,omitempty"`
	PrefetchMax    *int   `json:"prefetchMax,omitempty"`
	PrefetchQueue  *int   `json:"prefetchQueue,omitempty"`
}

type fileUIConfig struct {
	Theme        string `json:"theme,omitempty"`
	Follow       *bool  `json:"follow,omitempty"`
	TickInterval string `json:"tickInterval,omitempty"`
}

// toFileConfig converts Config to the JSON-serializable format.
func toFileConfig(cfg *Config) fileConfig {
	return fileConfig{
		Watch: fileWatchConfig{
			Dirs:       cfg.Watch.Dirs,
			Extensions: cfg.Watch.Extensions,
			QueueSize:  &cfg.Watch.QueueSize,
		},
		Cache: fileCacheConfig{
			CapacityBytes:  &cfg.Cache.CapacityBytes,
			PrefetchFactor: &cfg.Cache.PrefetchFactor,
			PrefetchMax:    &cfg.Cache.PrefetchMax,
			PrefetchQueue:  &cfg.Cache.PrefetchQueue,
		},
		UI: fileUIConfig{
			Theme:        cfg.UI.Theme,
			Follow:       &cfg.UI.Follow,
			TickInterval: cfg.UI.TickInterval.String(),
		},
	}
}

// Save writes the config to ConfigPath().
func Save(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(toFileConfig(cfg), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
