package app

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/tailview/internal/config"
	"github.com/wilbur182/tailview/internal/linecache"
	"github.com/wilbur182/tailview/internal/repository"
)

// fakeRepo serves files whose line i is "<name> line i". Lines below
// cachedUpTo are reported as cached.
type fakeRepo struct {
	files      []repository.FileInfo
	cachedUpTo int
	requests   [][2]int
	changes    chan struct{}
}

func newFakeRepo(files ...repository.FileInfo) *fakeRepo {
	return &fakeRepo{files: files, cachedUpTo: 1 << 30, changes: make(chan struct{}, 1)}
}

func (r *fakeRepo) List() []repository.FileInfo {
	return append([]repository.FileInfo(nil), r.files...)
}

func (r *fakeRepo) LinesOpt(name string, start, end int) []linecache.Slot {
	var total int
	for _, f := range r.files {
		if f.Name == name {
			total = f.Lines
		}
	}
	end = min(end, total)
	if end <= start {
		return nil
	}
	slots := make([]linecache.Slot, end-start)
	for i := range slots {
		if n := start + i; n < r.cachedUpTo {
			slots[i] = linecache.Slot{Text: fmt.Sprintf("%s line %d", name, n), Cached: true}
		}
	}
	return slots
}

func (r *fakeRepo) RequestFetch(name string, start, end int) bool {
	r.requests = append(r.requests, [2]int{start, end})
	return true
}

func (r *fakeRepo) Changes() <-chan struct{} { return r.changes }

func newTestModel(repo *fakeRepo) Model {
	m := New(repo, config.Default(), nil, nil)
	m.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 12})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "pgdown":
			msg = tea.KeyMsg{Type: tea.KeyPgDown}
		case "shift+up":
			msg = tea.KeyMsg{Type: tea.KeyShiftUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func sampleFiles() []repository.FileInfo {
	base := time.Unix(1_700_000_000, 0)
	return []repository.FileInfo{
		{Name: "b.log", Lines: 500, LastUpdate: base.Add(-time.Minute)},
		{Name: "a.log", Lines: 3, LastUpdate: base.Add(-time.Hour)},
		{Name: "c.log", Lines: 40, LastUpdate: base},
	}
}

func TestNew_SortsByName(t *testing.T) {
	m := newTestModel(newFakeRepo(sampleFiles()...))
	var names []string
	for _, f := range m.files {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "a.log,b.log,c.log" {
		t.Errorf("files = %s", got)
	}
}

func TestSortKeys(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"N", "c.log,b.log,a.log"},
		{"l", "a.log,c.log,b.log"},
		{"L", "b.log,c.log,a.log"},
		{"a", "c.log,b.log,a.log"},
		{"A", "a.log,b.log,c.log"},
	}
	for _, tt := range tests {
		m := press(t, newTestModel(newFakeRepo(sampleFiles()...)), tt.key)
		var names []string
		for _, f := range m.files {
			names = append(names, f.Name)
		}
		if got := strings.Join(names, ","); got != tt.want {
			t.Errorf("sort %q = %s, want %s", tt.key, got, tt.want)
		}
	}
}

func TestOpenAndNavigate(t *testing.T) {
	m := newTestModel(newFakeRepo(sampleFiles()...))
	m = press(t, m, "j", "enter") // b.log, 500 lines

	if m.mode != modeFile || len(m.tabs) != 1 || m.tabs[0].name != "b.log" {
		t.Fatalf("mode=%v tabs=%+v", m.mode, m.tabs)
	}
	h := m.viewHeight() // 10

	m = press(t, m, "down", "down")
	if m.tabs[0].cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.tabs[0].cursor)
	}

	m = press(t, m, "pgdown")
	if m.tabs[0].offset != h || m.tabs[0].cursor != 2+h {
		t.Errorf("after pgdown offset=%d cursor=%d", m.tabs[0].offset, m.tabs[0].cursor)
	}

	m = press(t, m, "G")
	if m.tabs[0].cursor != 499 || m.tabs[0].offset != 500-h {
		t.Errorf("after G offset=%d cursor=%d", m.tabs[0].offset, m.tabs[0].cursor)
	}

	m = press(t, m, "shift+up")
	if m.tabs[0].offset != 500-2*h {
		t.Errorf("after shift+up offset=%d", m.tabs[0].offset)
	}

	m = press(t, m, "g")
	if m.tabs[0].cursor != 0 || m.tabs[0].offset != 0 {
		t.Errorf("after g offset=%d cursor=%d", m.tabs[0].offset, m.tabs[0].cursor)
	}

	m = press(t, m, "up")
	if m.tabs[0].cursor != 0 {
		t.Errorf("cursor moved above line 0: %d", m.tabs[0].cursor)
	}
}

func TestGotoLine(t *testing.T) {
	m := newTestModel(newFakeRepo(sampleFiles()...))
	m = press(t, m, "j", "enter", ":", "2", "5", "0", "enter")

	if m.gotoOpen {
		t.Fatal("goto prompt still open")
	}
	if m.tabs[0].cursor != 249 {
		t.Errorf("cursor = %d, want 249", m.tabs[0].cursor)
	}

	m = press(t, m, ":", "x", "enter")
	if !m.toastErr || !strings.Contains(m.toast, "not a line number") {
		t.Errorf("toast = %q (error=%v)", m.toast, m.toastErr)
	}

	m = press(t, m, ":", "esc")
	if m.gotoOpen {
		t.Error("esc should close the goto prompt")
	}
}

func TestFollowSticksToEnd(t *testing.T) {
	repo := newFakeRepo(sampleFiles()...)
	m := newTestModel(repo)
	m = press(t, m, "j", "enter", "f")
	if !m.tabs[0].follow || m.tabs[0].cursor != 499 {
		t.Fatalf("follow=%v cursor=%d", m.tabs[0].follow, m.tabs[0].cursor)
	}

	repo.files[0].Lines = 520
	next, _ := m.Update(changedMsg{})
	m = next.(Model)
	if m.tabs[0].cursor != 519 || m.tabs[0].offset != 520-m.viewHeight() {
		t.Errorf("after growth offset=%d cursor=%d", m.tabs[0].offset, m.tabs[0].cursor)
	}

	m = press(t, m, "k")
	if m.tabs[0].follow {
		t.Error("moving up should leave follow mode")
	}
}

func TestTabs(t *testing.T) {
	m := newTestModel(newFakeRepo(sampleFiles()...))
	m = press(t, m, "enter", "o", "j", "enter", "o", "j", "enter")
	if len(m.tabs) != 3 || m.active != 2 {
		t.Fatalf("tabs=%d active=%d", len(m.tabs), m.active)
	}

	m = press(t, m, "tab")
	if m.active != 0 {
		t.Errorf("tab wrapped to %d, want 0", m.active)
	}

	// Reopening an open file reuses its tab.
	m = press(t, m, "o", "g", "enter")
	if len(m.tabs) != 3 || m.tabs[m.active].name != "a.log" {
		t.Errorf("reopen: tabs=%d active=%s", len(m.tabs), m.tabs[m.active].name)
	}

	m = press(t, m, "x", "x", "x")
	if len(m.tabs) != 0 || m.mode != modeList {
		t.Errorf("after closing all: tabs=%d mode=%v", len(m.tabs), m.mode)
	}
}

func TestRemovedFileClosesTab(t *testing.T) {
	repo := newFakeRepo(sampleFiles()...)
	m := newTestModel(repo)
	m = press(t, m, "enter") // a.log
	repo.files = repo.files[:1]

	next, _ := m.Update(changedMsg{})
	m = next.(Model)
	if len(m.tabs) != 0 || m.mode != modeList {
		t.Errorf("tabs=%+v mode=%v", m.tabs, m.mode)
	}
	if !strings.Contains(m.toast, "a.log was removed") {
		t.Errorf("toast = %q", m.toast)
	}
}

func TestRequestsUncachedLines(t *testing.T) {
	repo := newFakeRepo(sampleFiles()...)
	repo.cachedUpTo = 4
	m := newTestModel(repo)
	m = press(t, m, "j", "enter")

	if len(repo.requests) == 0 {
		t.Fatal("no fetch requested")
	}
	got := repo.requests[len(repo.requests)-1]
	if got != [2]int{4, m.viewHeight()} {
		t.Errorf("requested %v, want [4 %d]", got, m.viewHeight())
	}

	view := m.View()
	if !strings.Contains(view, "b.log line 3") {
		t.Error("cached line missing from view")
	}
	if !strings.Contains(view, placeholderText) {
		t.Error("uncached lines should render a placeholder")
	}
}

func TestCopyLine(t *testing.T) {
	var copied string
	repo := newFakeRepo(sampleFiles()...)
	m := New(repo, config.Default(), nil, func(s string) error {
		copied = s
		return nil
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = press(t, next.(Model), "j", "enter", "j")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("no copy command")
	}
	msg := cmd()
	if copied != "b.log line 1" {
		t.Errorf("copied %q", copied)
	}
	next, _ = m.Update(msg)
	if got := next.(Model).toast; got != "line copied" {
		t.Errorf("toast = %q", got)
	}
}

func TestCopyLine_Error(t *testing.T) {
	m := Model{clip: func(string) error { return errors.New("no display") }}
	msg := m.copyLine("x")()
	toast, ok := msg.(toastMsg)
	if !ok || !toast.isError || !strings.Contains(toast.text, "no display") {
		t.Errorf("msg = %#v", msg)
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(newFakeRepo(sampleFiles()...))
	m = press(t, m, "?")
	if !m.showHelp {
		t.Fatal("help not shown")
	}
	// q closes the overlay instead of quitting.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		t.Error("q in help should not quit")
	}
	if next.(Model).showHelp {
		t.Error("help still shown")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(newFakeRepo())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestEmptyListView(t *testing.T) {
	m := newTestModel(newFakeRepo())
	if !strings.Contains(m.View(), "no matching files yet") {
		t.Error("empty state missing")
	}
	if got := strings.Count(m.View(), "\n") + 1; got != 12 {
		t.Errorf("view has %d rows, want 12", got)
	}
}

func TestHelpMarkdownListsBindings(t *testing.T) {
	md := defaultKeyMap().helpMarkdown()
	for _, want := range []string{"follow the end of the file", "go to line", "sort by age"} {
		if !strings.Contains(md, want) {
			t.Errorf("help missing %q", want)
		}
	}
}
