package lineindex

import "fmt"

// State discriminates the two Consistency outcomes.
type State int

const (
	StateConsistent State = iota
	StateInconsistent
)

func (s State) String() string {
	switch s {
	case StateConsistent:
		return "consistent"
	case StateInconsistent:
		return "inconsistent"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Consistency is the result of comparing an offset table with the file.
// The zero value is Consistent.
type Consistency struct {
	state State
	line  int
}

// Consistent returns the Consistent outcome.
func Consistent() Consistency { return Consistency{state: StateConsistent} }

// InconsistentAt returns the Inconsistent outcome for table entry line.
func InconsistentAt(line int) Consistency {
	return Consistency{state: StateInconsistent, line: line}
}

// State returns which outcome c holds.
func (c Consistency) State() State { return c.state }

// IsConsistent reports whether c is Consistent.
func (c Consistency) IsConsistent() bool { return c.state == StateConsistent }

// Inconsistent returns the first offending line and true, or 0 and false if
// c is Consistent.
func (c Consistency) Inconsistent() (int, bool) {
	if c.state != StateInconsistent {
		return 0, false
	}
	return c.line, true
}

func (c Consistency) String() string {
	if line, ok := c.Inconsistent(); ok {
		return fmt.Sprintf("inconsistent(%d)", line)
	}
	return "consistent"
}
