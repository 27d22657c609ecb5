package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wilbur182/tailview/internal/styles"
)

// Scrollbar describes a vertical scrollbar over a line-oriented view.
type Scrollbar struct {
	Total   int // lines in the file
	Offset  int // first visible line
	Visible int // lines that fit in the viewport
	Height  int // track height in rows
}

// Thumb returns the thumb position and size within the track. Size is 0 when
// all content is visible.
func (s Scrollbar) Thumb() (pos, size int) {
	if s.Height < 1 || s.Total <= s.Visible {
		return 0, 0
	}

	size = min(max(s.Visible*s.Height/s.Total, 1), s.Height)

	maxOffset := max(s.Total-s.Visible, 1)
	pos = s.Offset * (s.Height - size) / maxOffset
	pos = min(max(pos, 0), s.Height-size)
	return pos, size
}

// Render returns Height newline-separated rows, each one cell wide. When no
// scrolling is possible the column is blank so the layout width stays fixed.
func (s Scrollbar) Render() string {
	if s.Height < 1 {
		return ""
	}

	rows := make([]string, s.Height)
	pos, size := s.Thumb()
	if size == 0 {
		for i := range rows {
			rows[i] = " "
		}
		return strings.Join(rows, "\n")
	}

	track := lipgloss.NewStyle().Foreground(styles.ScrollbarTrackColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(styles.ScrollbarThumbColor).Render("┃")
	for i := range rows {
		if i >= pos && i < pos+size {
			rows[i] = thumb
		} else {
			rows[i] = track
		}
	}
	return strings.Join(rows, "\n")
}
