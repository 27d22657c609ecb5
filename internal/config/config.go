package config

import (
	"errors"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Watch WatchConfig `json:"watch"`
	Cache CacheConfig `json:"cache"`
	UI    UIConfig    `json:"ui"`
}

// WatchConfig configures which files are tracked.
type WatchConfig struct {
	Dirs       []string `json:"dirs"`       // directories to watch (non-recursive)
	Extensions []string `json:"extensions"` // e.g. ".log"; empty matches every file
	QueueSize  int      `json:"queueSize"`  // per-directory event queue capacity
}

// CacheConfig configures the per-file line cache.
type CacheConfig struct {
	// CapacityBytes is the byte budget of each file's line cache. Default: 256MB.
	CapacityBytes int64 `json:"capacityBytes"`
	// PrefetchFactor multiplies the requested span to size read-ahead. Default: 10.
	PrefetchFactor int `json:"prefetchFactor"`
	// PrefetchMax caps read-ahead in lines. Default: 2048.
	PrefetchMax int `json:"prefetchMax"`
	// PrefetchQueue is the capacity of the background fetch queue. Default: 64.
	PrefetchQueue int `json:"prefetchQueue"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme        string        `json:"theme"`
	Follow       bool          `json:"follow"`       // open files in follow mode
	TickInterval time.Duration `json:"tickInterval"` // list refresh interval for the Age column
}

const (
	defaultQueueSize      = 256
	defaultCapacityBytes  = 256 * 1024 * 1024
	defaultPrefetchFactor = 10
	defaultPrefetchMax    = 2048
	defaultPrefetchQueue  = 64
	defaultTickInterval   = time.Second
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			Extensions: []string{".log"},
			QueueSize:  defaultQueueSize,
		},
		Cache: CacheConfig{
			CapacityBytes:  defaultCapacityBytes,
			PrefetchFactor: defaultPrefetchFactor,
			PrefetchMax:    defaultPrefetchMax,
			PrefetchQueue:  defaultPrefetchQueue,
		},
		UI: UIConfig{
			Theme:        "default",
			TickInterval: defaultTickInterval,
		},
	}
}

// Validate checks the configuration for errors, resetting out-of-range
// tunables to their defaults.
func (c *Config) Validate() error {
	if c.Watch.QueueSize <= 0 {
		c.Watch.QueueSize = defaultQueueSize
	}
	if c.Cache.CapacityBytes <= 0 {
		c.Cache.CapacityBytes = defaultCapacityBytes
	}
	if c.Cache.PrefetchFactor < 0 {
		c.Cache.PrefetchFactor = defaultPrefetchFactor
	}
	if c.Cache.PrefetchMax < 0 {
		c.Cache.PrefetchMax = defaultPrefetchMax
	}
	if c.Cache.PrefetchQueue <= 0 {
		c.Cache.PrefetchQueue = defaultPrefetchQueue
	}
	if c.UI.TickInterval <= 0 {
		c.UI.TickInterval = defaultTickInterval
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "default"
	}
	for _, d := range c.Watch.Dirs {
		if d == "" {
			return errors.New("config: empty watch directory")
		}
	}
	return nil
}
