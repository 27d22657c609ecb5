package markdown

import (
	"strings"
	"testing"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "follow the file", 20, []string{"follow the file"}},
		{"wraps", "follow the file as it grows", 10, []string{"follow the", "file as it", "grows"}},
		{"newlines", "a\nb", 10, []string{"a b"}},
		{"empty", "   ", 10, nil},
		{"no width", "abc", 0, []string{"abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, tt.width)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("WrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_NarrowFallsBack(t *testing.T) {
	r := NewRenderer("dark", nil)
	got := r.Render("# Keys\n\nq quits", 12)
	if len(got) == 0 || strings.Contains(strings.Join(got, ""), "\x1b[") {
		t.Errorf("narrow render should be plain text, got %q", got)
	}
}

func TestRender_Caches(t *testing.T) {
	r := NewRenderer("notty", nil)
	content := "# Keys\n\n- `q` quit\n- `f` follow"

	first := r.Render(content, 60)
	if len(first) == 0 {
		t.Fatal("empty render")
	}
	if !strings.Contains(strings.Join(first, "\n"), "follow") {
		t.Errorf("render lost content: %q", first)
	}
	if len(r.cache) != 1 {
		t.Errorf("cache size = %d, want 1", len(r.cache))
	}

	r.Render(content, 60)
	if len(r.cache) != 1 {
		t.Errorf("cache size after repeat = %d, want 1", len(r.cache))
	}

	// A new width replaces the renderer and drops earlier entries.
	r.Render(content, 70)
	if len(r.cache) != 1 || r.lastWidth != 70 {
		t.Errorf("after width change cache=%d width=%d", len(r.cache), r.lastWidth)
	}
}

func TestRender_Empty(t *testing.T) {
	if got := NewRenderer("", nil).Render("", 80); got != nil {
		t.Errorf("Render(\"\") = %q", got)
	}
}

func TestCacheKey_WidthMatters(t *testing.T) {
	if cacheKey("x", 40) == cacheKey("x", 41) {
		t.Error("cache key should include width")
	}
}
