// Package lineindex maps line numbers to byte offsets for newline-delimited
// files that only ever grow, and detects when a file no longer matches the
// offsets recorded for it.
package lineindex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultReadBufferSize is the scan buffer and consistency block size.
	DefaultReadBufferSize = 64 * 1024

	// headSampleSize caps how much of the first line is fingerprinted.
	headSampleSize = 4 * 1024

	// Unbounded may be used as the end of an open-ended line range.
	Unbounded = math.MaxInt
)

// Batch is the result of a Fetch.
type Batch struct {
	Start int      // line number of Lines[0]
	Lines []string // line contents without terminators
	Open  bool     // the last line had no terminator in the bytes read
}

// Index is the offset table of one file. Reads are safe to run concurrently
// with each other and with Update; Update calls are serialized.
type Index struct {
	path    string
	logger  *slog.Logger
	bufSize int

	updateMu sync.Mutex

	mu      sync.RWMutex
	offsets []int64 // line start offsets, strictly increasing
	open    bool    // last entry is a provisional line
	size    int64   // bytes scanned so far
	headSum uint64  // xxhash of the first headLen bytes
	headLen int     // 0 until line 0 is terminated
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithReadBufferSize sets the scan buffer size. Values < 16 are ignored.
func WithReadBufferSize(n int) Option {
	return func(ix *Index) {
		if n >= 16 {
			ix.bufSize = n
		}
	}
}

// Build scans path from the start and returns its index.
func Build(ctx context.Context, path string, opts ...Option) (*Index, error) {
	ix := &Index{
		path:    path,
		logger:  slog.New(slog.DiscardHandler),
		bufSize: DefaultReadBufferSize,
	}
	for _, opt := range opts {
		opt(ix)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ioErr("open", path, err)
	}
	defer f.Close()

	res, err := scan(ctx, f, 0, ix.bufSize)
	if err != nil {
		return nil, scanErr(path, err)
	}

	ix.offsets = res.offsets
	ix.open = res.open
	ix.size = res.end
	if err := ix.recordHead(f); err != nil {
		return nil, err
	}

	ix.logger.Debug("indexed file", "path", path, "lines", len(ix.offsets), "bytes", ix.size, "open", ix.open)
	return ix, nil
}

// Path returns the indexed file path.
func (ix *Index) Path() string { return ix.path }

// Len returns the number of indexed lines, provisional line included.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.offsets)
}

// Open reports whether the last indexed line is still unterminated.
func (ix *Index) Open() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.open
}

// Size returns the number of bytes covered by the last scan.
func (ix *Index) Size() int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.size
}

// Fingerprint returns the recorded hash of the first line, or 0 when the
// first line has not been terminated yet.
func (ix *Index) Fingerprint() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.headLen == 0 {
		return 0
	}
	return ix.headSum
}

// snapshot returns the current table. Entries are never modified once
// published, so the returned slice stays valid without the lock.
func (ix *Index) snapshot() []int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.offsets[:len(ix.offsets):len(ix.offsets)]
}

// Update verifies the index against the file and appends any line starts
// discovered past the last recorded entry. It returns the number of lines
// appended. An *InconsistentError means the file was truncated or rewritten
// and the index must be rebuilt.
func (ix *Index) Update(ctx context.Context) (int, error) {
	ix.updateMu.Lock()
	defer ix.updateMu.Unlock()

	c, err := ix.Consistency(ctx)
	if err != nil {
		return 0, err
	}
	if line, ok := c.Inconsistent(); ok {
		return 0, &InconsistentError{Line: line}
	}

	offsets := ix.snapshot()
	var from int64
	if len(offsets) > 0 {
		from = offsets[len(offsets)-1]
	}

	f, err := os.Open(ix.path)
	if err != nil {
		return 0, ioErr("open", ix.path, err)
	}
	defer f.Close()

	if _, err := f.Seek(from, io.SeekStart); err != nil {
		return 0, ioErr("seek", ix.path, err)
	}
	res, err := scan(ctx, f, from, ix.bufSize)
	if err != nil {
		return 0, scanErr(ix.path, err)
	}

	// The rescan starts at the last entry, so its first offset repeats it.
	fresh := res.offsets
	if len(offsets) > 0 && len(fresh) > 0 && fresh[0] == from {
		fresh = fresh[1:]
	}

	ix.mu.Lock()
	ix.offsets = append(ix.offsets, fresh...)
	if len(res.offsets) > 0 {
		ix.open = res.open
		ix.size = res.end
	}
	needHead := ix.headLen == 0
	ix.mu.Unlock()

	if needHead {
		if err := ix.recordHead(f); err != nil {
			return len(fresh), err
		}
	}

	if len(fresh) > 0 {
		ix.logger.Debug("index updated", "path", ix.path, "appended", len(fresh), "lines", len(offsets)+len(fresh))
	}
	return len(fresh), nil
}

// Consistency checks that every recorded offset still lies inside the file
// and, after the first, is preceded by a line terminator. It stops at the
// first violation. A file shorter than the bytes already scanned reports its
// last line, which was cut short.
func (ix *Index) Consistency(ctx context.Context) (Consistency, error) {
	ix.mu.RLock()
	offsets := ix.offsets[:len(ix.offsets):len(ix.offsets)]
	scanned := ix.size
	ix.mu.RUnlock()

	f, err := os.Open(ix.path)
	if err != nil {
		return Consistency{}, ioErr("open", ix.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Consistency{}, ioErr("stat", ix.path, err)
	}
	fileLen := info.Size()

	win := newByteWindow(f, ix.bufSize)
	for i, off := range offsets {
		if i%(ctxCheckEvery*16) == 0 {
			if err := ctx.Err(); err != nil {
				return Consistency{}, err
			}
		}
		if off >= fileLen {
			return InconsistentAt(i), nil
		}
		if i == 0 {
			continue
		}
		b, ok, err := win.at(off - 1)
		if err != nil {
			return Consistency{}, ioErr("read", ix.path, err)
		}
		if !ok || b != '\n' {
			return InconsistentAt(i), nil
		}
	}
	if len(offsets) > 0 && fileLen < scanned {
		return InconsistentAt(len(offsets) - 1), nil
	}
	return Consistent(), nil
}

// Line returns line n, or false if the index has no such line.
func (ix *Index) Line(ctx context.Context, n int) (string, bool, error) {
	if n < 0 || n >= ix.Len() {
		return "", false, nil
	}
	lines, err := ix.Lines(ctx, n, n+1)
	if err != nil || len(lines) == 0 {
		return "", false, err
	}
	return lines[0], true, nil
}

// Lines returns the lines in [start, end). A start past the table yields an
// empty result; an end past the table reads to the end of the file.
func (ix *Index) Lines(ctx context.Context, start, end int) ([]string, error) {
	b, err := ix.Fetch(ctx, start, end)
	return b.Lines, err
}

// Fetch is Lines plus whether the last returned line was still unterminated
// when it was read.
func (ix *Index) Fetch(ctx context.Context, start, end int) (Batch, error) {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return Batch{Start: start}, nil
	}
	if err := ctx.Err(); err != nil {
		return Batch{Start: start}, err
	}

	ix.mu.RLock()
	known := len(ix.offsets)
	if start >= known {
		ix.mu.RUnlock()
		return Batch{Start: start}, nil
	}
	from := ix.offsets[start]
	limit := int64(-1)
	if end < known {
		limit = ix.offsets[end] - from
	}
	ix.mu.RUnlock()

	ix.logger.Debug("reading lines", "path", ix.path, "start", start, "end", end, "offset", from, "limit", limit)

	f, err := os.Open(ix.path)
	if err != nil {
		return Batch{Start: start}, ioErr("open", ix.path, err)
	}
	defer f.Close()

	data, err := readSpan(f, from, limit)
	if err != nil {
		return Batch{Start: start}, ioErr("read", ix.path, err)
	}

	lines, open := splitLines(data)
	// Reading to EOF may pick up lines appended since the last Update.
	if want := min(end, known) - start; len(lines) > want {
		lines = lines[:want]
		open = false
	}
	return Batch{Start: start, Lines: lines, Open: open}, nil
}

// Rotated reports whether the first line on disk no longer matches the
// recorded fingerprint, which happens when a file is replaced in place by
// content whose line boundaries happen to line up with the old ones.
func (ix *Index) Rotated(ctx context.Context) (bool, error) {
	ix.mu.RLock()
	sum, n := ix.headSum, ix.headLen
	ix.mu.RUnlock()
	if n == 0 {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	f, err := os.Open(ix.path)
	if err != nil {
		return false, ioErr("open", ix.path, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	got, err := f.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, ioErr("read", ix.path, err)
	}
	if got < n {
		return true, nil
	}
	return xxhash.Sum64(buf) != sum, nil
}

// recordHead fingerprints line 0 once it is terminated.
func (ix *Index) recordHead(f io.ReaderAt) error {
	ix.mu.RLock()
	var end int64
	switch {
	case len(ix.offsets) > 1:
		end = ix.offsets[1]
	case len(ix.offsets) == 1 && !ix.open:
		end = ix.size
	}
	ix.mu.RUnlock()
	if end == 0 {
		return nil
	}

	buf := make([]byte, min(end, headSampleSize))
	n, err := f.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return ioErr("read", ix.path, err)
	}

	ix.mu.Lock()
	ix.headSum = xxhash.Sum64(buf[:n])
	ix.headLen = n
	ix.mu.Unlock()
	return nil
}

// readSpan reads limit bytes at off, or everything from off to EOF when
// limit is negative. A short read is not an error.
func readSpan(f *os.File, off, limit int64) ([]byte, error) {
	if limit < 0 {
		return io.ReadAll(io.NewSectionReader(f, off, math.MaxInt64-off))
	}
	buf := make([]byte, limit)
	n, err := f.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func scanErr(path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ioErr("read", path, err)
}
