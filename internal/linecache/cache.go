// Package linecache serves line queries for one indexed file from a bounded,
// byte-weighted in-memory store, reading ahead on misses so sequential
// scrolling costs few file reads.
package linecache

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/wilbur182/tailview/internal/lineindex"
)

const (
	// DefaultCapacity is the byte budget of a cache instance.
	DefaultCapacity int64 = 256 * 1024 * 1024

	// DefaultPrefetchFactor multiplies the requested span to size read-ahead.
	DefaultPrefetchFactor = 10

	// DefaultPrefetchMax caps read-ahead in lines.
	DefaultPrefetchMax = 2_048
)

// Source is the line provider behind a Cache. *lineindex.Index implements it.
type Source interface {
	Len() int
	Fetch(ctx context.Context, start, end int) (lineindex.Batch, error)
}

// Slot is one entry of a LinesOpt result.
type Slot struct {
	Text   string
	Cached bool
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits    int64 // lines served from the store
	Misses  int64 // queries that needed a fetch
	Fetches int64 // fetches actually issued to the source
	Entries int
	Weight  int64
}

// Cache wraps a Source with a weighted LRU store. It never mutates the
// source. Safe for concurrent use.
type Cache struct {
	src         Source
	store       *Store
	logger      *slog.Logger
	factor      int
	maxPrefetch int

	group singleflight.Group

	// tail holds the provisional last line outside the store. It is valid
	// until Refresh or until the source grows past it.
	tailMu  sync.Mutex
	tail    *tailLine
	tailGen uint64

	hits    atomic.Int64
	misses  atomic.Int64
	fetches atomic.Int64
}

type tailLine struct {
	line int
	text string
}

// Option configures a Cache.
type Option func(*cacheOptions)

type cacheOptions struct {
	capacity    int64
	factor      int
	maxPrefetch int
	logger      *slog.Logger
}

// WithCapacity sets the byte budget. Values <= 0 are ignored.
func WithCapacity(n int64) Option {
	return func(o *cacheOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithPrefetch sets the read-ahead factor and cap in lines. A factor of 0
// disables read-ahead.
func WithPrefetch(factor, maxLines int) Option {
	return func(o *cacheOptions) {
		if factor >= 0 {
			o.factor = factor
		}
		if maxLines >= 0 {
			o.maxPrefetch = maxLines
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *cacheOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a cache over src.
func New(src Source, opts ...Option) *Cache {
	o := cacheOptions{
		capacity:    DefaultCapacity,
		factor:      DefaultPrefetchFactor,
		maxPrefetch: DefaultPrefetchMax,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache{
		src:         src,
		store:       NewStore(o.capacity),
		logger:      o.logger,
		factor:      o.factor,
		maxPrefetch: o.maxPrefetch,
	}
}

// Line returns line n, fetching it (and its read-ahead window) on a miss.
func (c *Cache) Line(ctx context.Context, n int) (string, bool, error) {
	if n < 0 || n == math.MaxInt {
		return "", false, nil
	}
	if v, ok := c.store.Get(n); ok {
		c.hits.Add(1)
		return v, true, nil
	}
	lines, err := c.Lines(ctx, n, n+1)
	if err != nil || len(lines) == 0 {
		return "", false, err
	}
	return lines[0], true, nil
}

// Lines returns the lines in [start, end). Leading cache hits are served from
// the store; the rest is fetched in one read that extends past end by the
// prefetch window, and everything read is cached.
func (c *Cache) Lines(ctx context.Context, start, end int) ([]string, error) {
	lines, _, err := c.lines(ctx, start, end)
	return lines, err
}

// Prefetch loads [start, end) like Lines and returns how many lines became
// newly visible to LinesOpt. Zero means the read brought nothing new.
func (c *Cache) Prefetch(ctx context.Context, start, end int) (int, error) {
	_, added, err := c.lines(ctx, start, end)
	return added, err
}

func (c *Cache) lines(ctx context.Context, start, end int) ([]string, int, error) {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return nil, 0, nil
	}

	var lines []string
	miss := start
	for ; miss < end; miss++ {
		v, ok := c.store.Get(miss)
		if !ok {
			break
		}
		lines = append(lines, v)
	}
	c.hits.Add(int64(miss - start))

	c.logger.Debug("cache lookup", "start", start, "end", end, "cached", miss-start)
	if miss == end {
		return lines, 0, nil
	}
	c.misses.Add(1)

	window := saturatingAdd(end, min(saturatingMul(end-start, c.factor), c.maxPrefetch))
	res, err := c.fetch(ctx, miss, window)
	if err != nil {
		return nil, 0, err
	}

	fetched := res.batch.Lines
	if want := end - miss; len(fetched) > want {
		fetched = fetched[:want]
	}
	return append(lines, fetched...), res.added, nil
}

// LinesOpt returns what the store holds for [start, end) without doing any
// I/O. end is clamped to the source length.
func (c *Cache) LinesOpt(start, end int) []Slot {
	if start < 0 {
		start = 0
	}
	end = min(end, c.src.Len())
	if end <= start {
		return nil
	}

	tail, hasTail := c.tailLine()
	slots := make([]Slot, end-start)
	for i := range slots {
		n := start + i
		if v, ok := c.store.Get(n); ok {
			slots[i] = Slot{Text: v, Cached: true}
		} else if hasTail && n == tail.line {
			slots[i] = Slot{Text: tail.text, Cached: true}
		}
	}
	return slots
}

// Refresh forgets the provisional last line. Call it after the source has
// been updated, since that line may have grown.
func (c *Cache) Refresh() {
	c.tailMu.Lock()
	c.tail = nil
	c.tailGen++
	c.tailMu.Unlock()
}

// tailLine returns the provisional line if it is still the source's last
// line.
func (c *Cache) tailLine() (tailLine, bool) {
	c.tailMu.Lock()
	t := c.tail
	c.tailMu.Unlock()
	if t == nil || t.line != c.src.Len()-1 {
		return tailLine{}, false
	}
	return *t, true
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Fetches: c.fetches.Load(),
		Entries: c.store.Len(),
		Weight:  c.store.Weight(),
	}
}

type fetchResult struct {
	batch lineindex.Batch
	added int // lines not visible to LinesOpt before the read
}

// fetch reads [start, end) from the source and caches the result.
// Concurrent fetches of the same window share one read.
func (c *Cache) fetch(ctx context.Context, start, end int) (fetchResult, error) {
	key := strconv.Itoa(start) + ":" + strconv.Itoa(end)
	v, err, _ := c.group.Do(key, func() (any, error) {
		c.tailMu.Lock()
		gen := c.tailGen
		c.tailMu.Unlock()

		c.fetches.Add(1)
		batch, err := c.src.Fetch(ctx, start, end)
		if err != nil {
			return fetchResult{}, err
		}

		res := fetchResult{batch: batch}
		cacheable := batch.Lines
		// An unterminated last line may still grow; keep it out of the store.
		if batch.Open && len(cacheable) > 0 {
			cacheable = cacheable[:len(cacheable)-1]
			if c.setTail(gen, start+len(cacheable), batch.Lines[len(cacheable)]) {
				res.added++
			}
		}
		for i, line := range cacheable {
			if _, ok := c.store.Peek(start + i); !ok {
				res.added++
			}
			c.store.Insert(start+i, line)
		}

		c.logger.Debug("fetched lines", "start", start, "end", end, "read", len(batch.Lines), "cached", len(cacheable), "added", res.added)
		return res, nil
	})
	if err != nil {
		return fetchResult{}, err
	}
	return v.(fetchResult), nil
}

// setTail records the provisional line read under generation gen. A Refresh
// since then means the text may be stale, so it is dropped.
func (c *Cache) setTail(gen uint64, line int, text string) bool {
	c.tailMu.Lock()
	defer c.tailMu.Unlock()
	if gen != c.tailGen {
		return false
	}
	if c.tail != nil && c.tail.line == line && c.tail.text == text {
		return false
	}
	c.tail = &tailLine{line: line, text: text}
	return true
}

func saturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func saturatingMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
