package repository

import (
	"context"
	"errors"

	"github.com/wilbur182/tailview/internal/linecache"
	"github.com/wilbur182/tailview/internal/lineindex"
	"github.com/wilbur182/tailview/internal/monitor"
)

// work applies the events of one monitor in order until ctx is done or the
// monitor stops.
func (r *Repository) work(ctx context.Context, m *monitor.Monitor) error {
	defer m.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-m.Events():
			if !ok {
				return nil
			}
			r.apply(ctx, m.Dir(), ev)
			r.notify()
			r.fd.Check("event")
		}
	}
}

func (r *Repository) apply(ctx context.Context, dir string, ev monitor.Event) {
	name := r.nameFor(dir, ev.Path)
	switch ev.Kind {
	case monitor.Created:
		r.build(ctx, name, ev.Path)
	case monitor.Modified:
		r.update(ctx, name, ev.Path)
	case monitor.Removed:
		r.remove(name)
	}
}

// build indexes path from scratch and replaces any existing entry.
func (r *Repository) build(ctx context.Context, name, path string) {
	ix, err := lineindex.Build(ctx, path, lineindex.WithLogger(r.logger))
	if err != nil {
		// A file that vanished between the event and the read is not tracked.
		r.logger.Warn("index build failed", "file", name, "err", err)
		r.remove(name)
		return
	}
	cache := linecache.New(ix,
		linecache.WithCapacity(r.cfg.Cache.CapacityBytes),
		linecache.WithPrefetch(r.cfg.Cache.PrefetchFactor, r.cfg.Cache.PrefetchMax),
		linecache.WithLogger(r.logger),
	)

	r.mu.Lock()
	_, replaced := r.files[name]
	r.files[name] = &entry{
		name:    name,
		path:    path,
		index:   ix,
		cache:   cache,
		updated: r.now(),
	}
	r.mu.Unlock()

	r.logger.Info("indexed file", "file", name, "lines", ix.Len(), "replaced", replaced)
}

// update extends the index of name. A rotated or rewritten file is rebuilt
// along with a fresh cache; a read failure keeps the previous state.
func (r *Repository) update(ctx context.Context, name, path string) {
	e := r.lookup(name)
	if e == nil {
		r.build(ctx, name, path)
		return
	}

	rotated, err := e.index.Rotated(ctx)
	if err != nil {
		r.logger.Warn("rotation check failed", "file", name, "err", err)
		return
	}
	if rotated {
		r.logger.Info("file rotated, rebuilding", "file", name)
		r.build(ctx, name, path)
		return
	}

	added, err := e.index.Update(ctx)
	var inconsistent *lineindex.InconsistentError
	switch {
	case errors.As(err, &inconsistent):
		r.logger.Info("file rewritten, rebuilding", "file", name, "line", inconsistent.Line)
		r.build(ctx, name, path)
		return
	case err != nil:
		r.logger.Warn("index update failed", "file", name, "err", err)
		return
	}

	// The open last line may have grown even when no line was added.
	e.cache.Refresh()
	r.mu.Lock()
	e.updated = r.now()
	r.mu.Unlock()
	if added > 0 {
		r.logger.Debug("indexed new lines", "file", name, "added", added, "lines", e.index.Len())
	}
}

func (r *Repository) remove(name string) {
	r.mu.Lock()
	_, ok := r.files[name]
	delete(r.files, name)
	r.mu.Unlock()
	if ok {
		r.logger.Info("stopped tracking file", "file", name)
	}
}

// prefetch serves RequestFetch in the background.
func (r *Repository) prefetch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-r.fetches:
			r.serve(ctx, req)
		}
	}
}

func (r *Repository) serve(ctx context.Context, req fetchRequest) {
	defer func() {
		r.pendingMu.Lock()
		delete(r.pending, req)
		r.pendingMu.Unlock()
	}()

	e := r.lookup(req.name)
	if e == nil {
		return
	}
	added, err := e.cache.Prefetch(ctx, req.start, req.end)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("prefetch failed", "file", req.name, "start", req.start, "end", req.end, "err", err)
		}
		return
	}
	// A read that brought nothing new must not wake the UI, which would ask
	// for the same range again.
	if added > 0 {
		r.notify()
	}
}
