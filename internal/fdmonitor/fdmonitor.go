// Package fdmonitor watches the process's open file descriptor count.
// Every line read opens the indexed file, so a leak shows up here first.
package fdmonitor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

const (
	// DefaultWarningThreshold is the FD count that triggers a warning.
	DefaultWarningThreshold = 200
	// DefaultCriticalThreshold is the FD count that triggers a critical warning.
	DefaultCriticalThreshold = 500
	// DefaultInterval is the minimum time between two counts.
	DefaultInterval = 10 * time.Second
)

// Checker rate-limits FD counts and logs when thresholds are crossed.
type Checker struct {
	logger   *slog.Logger
	warning  int
	critical int
	interval time.Duration
	now      func() time.Time
	count    func() int

	mu        sync.Mutex
	lastCheck time.Time
	lastCount int
}

// New returns a Checker with the default thresholds.
func New(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{
		logger:   logger,
		warning:  DefaultWarningThreshold,
		critical: DefaultCriticalThreshold,
		interval: DefaultInterval,
		now:      time.Now,
		count:    Count,
	}
}

// SetThresholds configures the warning and critical thresholds.
func (c *Checker) SetThresholds(warning, critical int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warning = warning
	c.critical = critical
}

// Check counts open FDs at most once per interval and logs a warning when a
// threshold is reached. It returns the last count and whether it warned.
func (c *Checker) Check(reason string) (count int, warned bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastCheck.IsZero() && now.Sub(c.lastCheck) < c.interval {
		return c.lastCount, false
	}

	count = c.count()
	if count < 0 {
		return count, false
	}
	c.lastCheck = now
	c.lastCount = count

	switch {
	case count >= c.critical:
		c.logger.Warn("critical FD count", "count", count, "threshold", c.critical, "reason", reason)
		return count, true
	case count >= c.warning:
		c.logger.Warn("high FD count", "count", count, "threshold", c.warning, "reason", reason)
		return count, true
	}
	return count, false
}

// Count returns the number of open file descriptors for this process,
// or -1 on platforms other than Linux and macOS.
func Count() int {
	dir := fdDir()
	if dir == "" {
		return -1
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return -1
	}
	return len(entries)
}

// Breakdown groups open descriptors by kind ("log", "pipe", "socket", ...).
func Breakdown() map[string]int {
	info := make(map[string]int)
	dir := fdDir()
	if dir == "" {
		return info
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return info
	}
	for _, e := range entries {
		target, err := os.Readlink(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		info[category(target)]++
	}
	return info
}

func category(target string) string {
	switch {
	case target == "pipe" || target == "anon_inode:[pipe]":
		return "pipe"
	case target == "socket" || len(target) > 0 && target[0] == '[':
		return "socket"
	case filepath.Ext(target) == ".log":
		return "log"
	case isDirectory(target):
		return "directory"
	default:
		return "file"
	}
}

func fdDir() string {
	switch runtime.GOOS {
	case "darwin":
		return "/dev/fd"
	case "linux":
		return fmt.Sprintf("/proc/%d/fd", os.Getpid())
	default:
		return ""
	}
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
