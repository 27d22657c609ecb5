// Package markdown renders markdown text, such as the help overlay, for the
// terminal with glamour.
package markdown

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/glamour"
)

const (
	// MinWidthForMarkdown is the narrowest width rendered with glamour.
	// Below it content is plain-wrapped.
	MinWidthForMarkdown = 30

	// MaxCacheEntries bounds the render cache; it is cleared when full.
	MaxCacheEntries = 32
)

// Renderer wraps glamour with a render cache keyed by content and width.
type Renderer struct {
	style  string
	logger *slog.Logger

	mu        sync.Mutex
	renderer  *glamour.TermRenderer
	lastWidth int
	cache     map[uint64][]string
}

// NewRenderer creates a renderer using the named glamour style ("dark",
// "dracula", ...) or a path to a style file.
func NewRenderer(style string, logger *slog.Logger) *Renderer {
	if style == "" {
		style = "dark"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		style:  style,
		logger: logger,
		cache:  make(map[uint64][]string),
	}
}

// Render renders content to styled lines no wider than width.
func (r *Renderer) Render(content string, width int) []string {
	if content == "" {
		return nil
	}
	if width < MinWidthForMarkdown {
		return WrapText(content, width)
	}

	key := cacheKey(content, width)

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[key]; ok {
		return cached
	}

	renderer, err := r.rendererFor(width)
	if err != nil {
		r.logger.Warn("glamour renderer error", "style", r.style, "err", err)
		return WrapText(content, width)
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		r.logger.Warn("glamour render error", "err", err)
		return WrapText(content, width)
	}

	lines := strings.Split(strings.TrimRight(rendered, "\n\r\t "), "\n")
	if len(r.cache) >= MaxCacheEntries {
		clear(r.cache)
	}
	r.cache[key] = lines
	return lines
}

func cacheKey(content string, width int) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(content)
	_, _ = h.Write([]byte{byte(width >> 8), byte(width)})
	return h.Sum64()
}

// rendererFor returns a glamour renderer for width, recreating it (and
// dropping cached renders) when the width changes. Called with mu held.
func (r *Renderer) rendererFor(width int) (*glamour.TermRenderer, error) {
	if r.renderer != nil && r.lastWidth == width {
		return r.renderer, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.renderer = renderer
	r.lastWidth = width
	clear(r.cache)
	return renderer, nil
}

// WrapText word-wraps text to maxWidth. Newlines are treated as spaces.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxWidth {
			current += " " + word
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}
