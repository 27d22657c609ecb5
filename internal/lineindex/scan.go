package lineindex

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
)

// ctxCheckEvery bounds how many buffer refills pass between context checks.
const ctxCheckEvery = 256

type scanResult struct {
	offsets []int64
	end     int64 // position after the last byte read
	open    bool  // last recorded line has no terminator
}

// scan walks r, which is positioned at base, and records the offset of every
// line start. A trailing unterminated tail is recorded too and flagged open.
// Lines longer than the buffer are consumed in pieces.
func scan(ctx context.Context, r io.Reader, base int64, bufSize int) (scanResult, error) {
	br := bufio.NewReaderSize(r, bufSize)
	res := scanResult{end: base}
	atLineStart := true

	for reads := 0; ; reads++ {
		if reads%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return scanResult{}, err
			}
		}

		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			if atLineStart {
				res.offsets = append(res.offsets, res.end)
			}
			res.end += int64(len(chunk))
			atLineStart = chunk[len(chunk)-1] == '\n'
			res.open = !atLineStart
		}

		switch {
		case err == nil, errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return res, nil
		default:
			return scanResult{}, err
		}
	}
}

// splitLines splits data on '\n', dropping the terminator and a preceding
// '\r'. open reports whether the final line lacked a terminator.
func splitLines(data []byte) (lines []string, open bool) {
	if len(data) == 0 {
		return nil, false
	}
	lines = make([]string, 0, bytes.Count(data, []byte{'\n'})+1)
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, strings.TrimSuffix(string(data), "\r"))
			return lines, true
		}
		lines = append(lines, strings.TrimSuffix(string(data[:i]), "\r"))
		data = data[i+1:]
	}
	return lines, false
}

// byteWindow serves single-byte reads at increasing offsets from a block
// buffer so a consistency pass over short lines does not cost a syscall per
// line.
type byteWindow struct {
	r     io.ReaderAt
	buf   []byte
	start int64
	n     int
}

func newByteWindow(r io.ReaderAt, size int) *byteWindow {
	return &byteWindow{r: r, buf: make([]byte, size)}
}

// at returns the byte at off. ok is false when off is past the end of r.
func (w *byteWindow) at(off int64) (b byte, ok bool, err error) {
	if off >= w.start && off < w.start+int64(w.n) {
		return w.buf[off-w.start], true, nil
	}
	n, err := w.r.ReadAt(w.buf, off)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return 0, false, nil
		}
		return 0, false, err
	}
	w.start, w.n = off, n
	return w.buf[0], true, nil
}
