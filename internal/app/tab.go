package app

// tab is one open file in the file view.
type tab struct {
	name   string
	offset int // first visible line
	cursor int // selected line
	follow bool
}

// clamp keeps cursor and offset valid for total lines and a viewport of
// height rows, keeping the cursor on screen.
func (t *tab) clamp(total, height int) {
	if total <= 0 {
		t.cursor, t.offset = 0, 0
		return
	}
	height = max(height, 1)
	t.cursor = min(max(t.cursor, 0), total-1)
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+height {
		t.offset = t.cursor - height + 1
	}
	t.offset = min(max(t.offset, 0), max(total-height, 0))
}

// move shifts the cursor by delta lines. Moving up leaves follow mode.
func (t *tab) move(delta, total, height int) {
	if delta < 0 {
		t.follow = false
	}
	t.cursor += delta
	t.clamp(total, height)
}

// page scrolls the viewport and cursor by whole pages.
func (t *tab) page(pages, total, height int) {
	height = max(height, 1)
	if pages < 0 {
		t.follow = false
	}
	t.offset += pages * height
	t.cursor += pages * height
	t.clamp(total, height)
}

func (t *tab) top(total, height int) {
	t.follow = false
	t.cursor, t.offset = 0, 0
	t.clamp(total, height)
}

func (t *tab) bottom(total, height int) {
	t.cursor = total - 1
	t.offset = total - height
	t.clamp(total, height)
}

// jump puts the cursor on line n (0-based), centering it when possible.
func (t *tab) jump(n, total, height int) {
	t.follow = false
	t.cursor = n
	t.offset = n - height/2
	t.clamp(total, height)
}

// sync reacts to a new line count. In follow mode the view sticks to the end.
func (t *tab) sync(total, height int) {
	if t.follow {
		t.bottom(total, height)
		return
	}
	t.clamp(total, height)
}

// missing returns the smallest range covering the uncached lines of a
// LinesOpt result that starts at line first.
func missing(first int, cached []bool) (start, end int, ok bool) {
	start, end = -1, -1
	for i, c := range cached {
		if c {
			continue
		}
		if start < 0 {
			start = first + i
		}
		end = first + i + 1
	}
	return start, end, start >= 0
}
