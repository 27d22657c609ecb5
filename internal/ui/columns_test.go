package ui

import (
	"testing"
	"time"
)

func TestPadRight(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"app.log", 10, "app.log   "},
		{"app.log", 7, "app.log"},
		{"application.log", 8, "applica…"},
		{"日本.log", 9, "日本.log "},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := PadRight(tt.in, tt.width); got != tt.want {
			t.Errorf("PadRight(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadLeft(t *testing.T) {
	if got := PadLeft("42", 5); got != "   42" {
		t.Errorf("PadLeft = %q", got)
	}
	if got := PadLeft("123456", 4); got != "123…" {
		t.Errorf("PadLeft truncation = %q", got)
	}
}

func TestExpandTabs(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"no tabs", "no tabs"},
		{"\tx", "    x"},
		{"ab\tc", "ab  c"},
		{"abcd\te", "abcd    e"},
		{"日\tx", "日  x"},
	}
	for _, tt := range tests {
		if got := ExpandTabs(tt.in, 4); got != tt.want {
			t.Errorf("ExpandTabs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDigitWidth(t *testing.T) {
	for n, want := range map[int]int{0: 1, 9: 1, 10: 2, 4782: 4, 123456: 6} {
		if got := DigitWidth(n); got != want {
			t.Errorf("DigitWidth(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	tests := map[time.Duration]string{
		0:                   "0s",
		-time.Second:        "0s",
		42 * time.Second:    "42s",
		5 * time.Minute:     "5m",
		3 * time.Hour:       "3h",
		50 * time.Hour:      "2d",
		90*time.Minute + 10: "1h",
	}
	for d, want := range tests {
		if got := FormatAge(d); got != want {
			t.Errorf("FormatAge(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(512); got != "512 B" {
		t.Errorf("FormatBytes(512) = %q", got)
	}
	if got := FormatBytes(1536); got != "1.5 KiB" {
		t.Errorf("FormatBytes(1536) = %q", got)
	}
	if got := FormatBytes(-1); got != "0 B" {
		t.Errorf("FormatBytes(-1) = %q", got)
	}
}
