package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated cells.
const Ellipsis = "…"

// PadRight left-aligns s in a cell of width columns, truncating with an
// ellipsis when it does not fit.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, Ellipsis)
	return runewidth.FillRight(s, width)
}

// PadLeft right-aligns s in a cell of width columns.
func PadLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, Ellipsis)
	return runewidth.FillLeft(s, width)
}

// ExpandTabs replaces tabs with spaces up to the next multiple of tabWidth,
// counting display cells rather than bytes.
func ExpandTabs(s string, tabWidth int) string {
	if !strings.ContainsRune(s, '\t') || tabWidth <= 0 {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

// DigitWidth returns the number of columns needed to print n in decimal.
func DigitWidth(n int) int {
	if n < 1 {
		return 1
	}
	return len(strconv.Itoa(n))
}

// FormatAge renders d compactly: "12s", "4m", "3h", "2d".
func FormatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return strconv.Itoa(max(int(d/time.Second), 0)) + "s"
	case d < time.Hour:
		return strconv.Itoa(int(d/time.Minute)) + "m"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + "h"
	default:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d"
	}
}

// FormatBytes renders n with a binary unit suffix ("1.5 KiB").
func FormatBytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}
