// Package monitor watches a directory and reports file creation,
// modification and removal for files matching an extension filter.
package monitor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DefaultQueueSize is the capacity of the event channel.
const DefaultQueueSize = 256

// EventKind identifies what happened to a file.
type EventKind int

const (
	Created EventKind = iota
	Modified
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a change to one file.
type Event struct {
	Path string
	Kind EventKind
}

// Monitor watches a single directory (non-recursively).
type Monitor struct {
	dir        string
	fsWatcher  *fsnotify.Watcher
	extensions []string
	queueSize  int
	logger     *slog.Logger

	events chan Event
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithExtensions restricts events to files with one of the given extensions
// (e.g. ".log"). An empty list matches every regular file.
func WithExtensions(exts ...string) Option {
	return func(m *Monitor) {
		m.extensions = normalizeExtensions(exts)
	}
}

// WithQueueSize sets the event channel capacity.
func WithQueueSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.queueSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New starts watching dir. Every matching file already present is reported
// as Created before any live event.
func New(dir string, opts ...Option) (*Monitor, error) {
	m := &Monitor{
		dir:        dir,
		extensions: []string{".log"},
		queueSize:  DefaultQueueSize,
		logger:     slog.New(slog.DiscardHandler),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("monitor %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("monitor %s: not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("monitor %s: %w", dir, err)
	}
	// Watch before listing so nothing created in between is missed; a file
	// reported twice as Created is rebuilt, which is harmless.
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("monitor %s: %w", dir, err)
	}

	existing, err := m.listFiles()
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("monitor %s: %w", dir, err)
	}

	m.fsWatcher = fsw
	m.events = make(chan Event, max(m.queueSize, len(existing)))
	for _, path := range existing {
		m.events <- Event{Path: path, Kind: Created}
	}

	go m.run()
	return m, nil
}

// Dir returns the watched directory.
func (m *Monitor) Dir() string { return m.dir }

// Events returns the event channel. It is closed after Close.
func (m *Monitor) Events() <-chan Event { return m.events }

// Close stops watching. It is safe to call more than once.
func (m *Monitor) Close() error {
	var err error
	m.once.Do(func() {
		close(m.stop)
		err = m.fsWatcher.Close()
		<-m.done
	})
	return err
}

// run translates fsnotify events until Close.
func (m *Monitor) run() {
	defer close(m.done)
	defer close(m.events)

	for {
		select {
		case <-m.stop:
			return
		case ev, ok := <-m.fsWatcher.Events:
			if !ok {
				return
			}
			out, ok := m.translate(ev)
			if !ok {
				continue
			}
			if !m.send(out) {
				return
			}
		case err, ok := <-m.fsWatcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("watch error", "dir", m.dir, "err", err)
		}
	}
}

// send delivers ev. Modified events are dropped when the queue is full since
// the next update picks up the same growth; Created and Removed wait.
func (m *Monitor) send(ev Event) bool {
	if ev.Kind == Modified {
		select {
		case m.events <- ev:
		default:
			m.logger.Warn("event queue full, dropping event", "path", ev.Path, "kind", ev.Kind)
		}
		return true
	}
	select {
	case m.events <- ev:
		return true
	case <-m.stop:
		return false
	}
}

// translate maps an fsnotify event to an Event. Metadata-only changes and
// non-matching paths are suppressed.
func (m *Monitor) translate(ev fsnotify.Event) (Event, bool) {
	if !m.matches(ev.Name) {
		return Event{}, false
	}
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil || !info.Mode().IsRegular() {
			return Event{}, false
		}
		return Event{Path: ev.Name, Kind: Created}, true
	case ev.Has(fsnotify.Write):
		return Event{Path: ev.Name, Kind: Modified}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Event{Path: ev.Name, Kind: Removed}, true
	case ev.Has(fsnotify.Chmod):
		return Event{}, false
	default:
		m.logger.Debug("unsupported event", "path", ev.Name, "op", ev.Op.String())
		return Event{}, false
	}
}

func (m *Monitor) matches(path string) bool {
	if len(m.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range m.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// listFiles returns matching regular files in dir, sorted by name.
func (m *Monitor) listFiles() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(m.dir, e.Name())
		if m.matches(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
