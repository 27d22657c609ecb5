// Package repository tracks the files of one or more watched directories.
// Each directory has a single worker goroutine that applies monitor events in
// order; queries from the UI run concurrently against the same state.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wilbur182/tailview/internal/config"
	"github.com/wilbur182/tailview/internal/fdmonitor"
	"github.com/wilbur182/tailview/internal/linecache"
	"github.com/wilbur182/tailview/internal/lineindex"
	"github.com/wilbur182/tailview/internal/monitor"
)

// ErrUnknownFile is returned by queries for a name that is not tracked.
var ErrUnknownFile = errors.New("unknown file")

// FileInfo describes a tracked file.
type FileInfo struct {
	Name       string
	Path       string
	Lines      int
	Size       int64
	LastUpdate time.Time
	CacheBytes int64
}

// entry is the per-file state. Only the directory worker replaces entries or
// touches updated; the index and cache are safe for concurrent queries.
type entry struct {
	name    string
	path    string
	index   *lineindex.Index
	cache   *linecache.Cache
	updated time.Time
}

type fetchRequest struct {
	name       string
	start, end int
}

// Repository owns one (index, cache) pair per tracked file.
type Repository struct {
	cfg    *config.Config
	logger *slog.Logger
	fd     *fdmonitor.Checker
	now    func() time.Time

	mu    sync.RWMutex
	files map[string]*entry

	monitorsMu sync.Mutex
	monitors   []*monitor.Monitor

	fetches   chan fetchRequest
	pendingMu sync.Mutex
	pending   map[fetchRequest]struct{}

	changes chan struct{}
}

// New creates an empty repository. A nil cfg uses config.Default().
func New(cfg *config.Config, logger *slog.Logger) *Repository {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{
		cfg:     cfg,
		logger:  logger,
		fd:      fdmonitor.New(logger),
		now:     time.Now,
		files:   make(map[string]*entry),
		fetches: make(chan fetchRequest, cfg.Cache.PrefetchQueue),
		pending: make(map[fetchRequest]struct{}),
		changes: make(chan struct{}, 1),
	}
}

// Watch starts monitoring dir. An error affects only this directory.
// Watch must be called before Run.
func (r *Repository) Watch(dir string) error {
	m, err := monitor.New(dir,
		monitor.WithExtensions(r.cfg.Watch.Extensions...),
		monitor.WithQueueSize(r.cfg.Watch.QueueSize),
		monitor.WithLogger(r.logger),
	)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	r.monitorsMu.Lock()
	r.monitors = append(r.monitors, m)
	r.monitorsMu.Unlock()
	r.logger.Info("watching directory", "dir", dir)
	return nil
}

// Scan applies every event already queued by the monitors without waiting
// for new ones. After Watch this covers all files present at startup.
func (r *Repository) Scan(ctx context.Context) {
	for _, m := range r.watched() {
		for drained := false; !drained; {
			select {
			case ev, ok := <-m.Events():
				if !ok {
					drained = true
					break
				}
				r.apply(ctx, m.Dir(), ev)
			default:
				drained = true
			}
		}
	}
	r.notify()
}

// Run starts one worker per watched directory plus the background
// prefetcher, and blocks until ctx is done. Monitors are closed on return.
func (r *Repository) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, m := range r.watched() {
		g.Go(func() error {
			return r.work(ctx, m)
		})
	}
	g.Go(func() error {
		return r.prefetch(ctx)
	})
	return g.Wait()
}

// Changes signals, coalesced, that the file list or cached content changed.
func (r *Repository) Changes() <-chan struct{} { return r.changes }

// List returns every tracked file sorted by name.
func (r *Repository) List() []FileInfo {
	r.mu.RLock()
	infos := make([]FileInfo, 0, len(r.files))
	for _, e := range r.files {
		infos = append(infos, FileInfo{
			Name:       e.name,
			Path:       e.path,
			Lines:      e.index.Len(),
			Size:       e.index.Size(),
			LastUpdate: e.updated,
			CacheBytes: e.cache.Stats().Weight,
		})
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Line returns line n of the named file.
func (r *Repository) Line(ctx context.Context, name string, n int) (string, bool, error) {
	e := r.lookup(name)
	if e == nil {
		return "", false, ErrUnknownFile
	}
	return e.cache.Line(ctx, n)
}

// Lines returns lines [start, end) of the named file, reading as needed.
func (r *Repository) Lines(ctx context.Context, name string, start, end int) ([]string, error) {
	e := r.lookup(name)
	if e == nil {
		return nil, ErrUnknownFile
	}
	return e.cache.Lines(ctx, start, end)
}

// LinesOpt returns the cached lines [start, end) of the named file without
// blocking. Missing entries have Cached == false; use RequestFetch to fill
// them in the background.
func (r *Repository) LinesOpt(name string, start, end int) []linecache.Slot {
	e := r.lookup(name)
	if e == nil {
		return nil
	}
	return e.cache.LinesOpt(start, end)
}

// RequestFetch queues a background read of [start, end). It never blocks:
// when the queue is full, or the same range is already queued, the request
// is dropped and false is returned.
func (r *Repository) RequestFetch(name string, start, end int) bool {
	req := fetchRequest{name: name, start: start, end: end}

	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	if _, ok := r.pending[req]; ok {
		return false
	}
	select {
	case r.fetches <- req:
		r.pending[req] = struct{}{}
		return true
	default:
		r.logger.Debug("prefetch queue full, dropping request", "file", name, "start", start, "end", end)
		return false
	}
}

func (r *Repository) watched() []*monitor.Monitor {
	r.monitorsMu.Lock()
	defer r.monitorsMu.Unlock()
	return append([]*monitor.Monitor(nil), r.monitors...)
}

func (r *Repository) lookup(name string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.files[name]
}

// nameFor derives the display name of path. With several watched
// directories the directory name is kept to avoid collisions, and the full
// directory path when two of them share a base name.
func (r *Repository) nameFor(dir, path string) string {
	base := filepath.Base(dir)
	r.monitorsMu.Lock()
	multi := len(r.monitors) > 1
	shared := 0
	for _, m := range r.monitors {
		if filepath.Base(m.Dir()) == base {
			shared++
		}
	}
	r.monitorsMu.Unlock()

	switch {
	case shared > 1:
		return filepath.Join(filepath.Clean(dir), filepath.Base(path))
	case multi:
		return filepath.Join(base, filepath.Base(path))
	}
	return filepath.Base(path)
}

func (r *Repository) notify() {
	select {
	case r.changes <- struct{}{}:
	default:
	}
}
