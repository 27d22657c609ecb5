package lineindex

import (
	"errors"
	"fmt"
)

// ErrInconsistent matches any *InconsistentError via errors.Is.
var ErrInconsistent = errors.New("inconsistent index")

// IOError reports an open, seek, or read failure against the indexed file.
// It is scoped to the failing call; the offset table is left untouched.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("lineindex: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// InconsistentError is returned by Update when the file on disk no longer
// matches the recorded offsets. Line is the first offending table entry.
// The table is not extended; callers are expected to rebuild.
type InconsistentError struct {
	Line int
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("lineindex: inconsistent index at line %d", e.Line)
}

// Is lets errors.Is(err, ErrInconsistent) match.
func (e *InconsistentError) Is(target error) bool {
	return target == ErrInconsistent
}

func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
