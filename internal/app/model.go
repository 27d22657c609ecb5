// Package app is the bubbletea model of the log browser: a file list and a
// tabbed file view that follows files as they grow.
package app

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/tailview/internal/config"
	"github.com/wilbur182/tailview/internal/linecache"
	"github.com/wilbur182/tailview/internal/markdown"
	"github.com/wilbur182/tailview/internal/repository"
	"github.com/wilbur182/tailview/internal/styles"
)

// Repo is the part of *repository.Repository the UI uses. The UI never
// blocks on file I/O: it reads cached lines and asks for the rest.
type Repo interface {
	List() []repository.FileInfo
	LinesOpt(name string, start, end int) []linecache.Slot
	RequestFetch(name string, start, end int) bool
	Changes() <-chan struct{}
}

type mode int

const (
	modeList mode = iota
	modeFile
)

// Message types
type (
	// changedMsg reports that the repository changed.
	changedMsg struct{}

	// tickMsg refreshes ages and expires toasts.
	tickMsg time.Time

	// toastMsg shows a temporary status message.
	toastMsg struct {
		text    string
		isError bool
	}
)

const toastDuration = 3 * time.Second

// Model is the root bubbletea model.
type Model struct {
	repo   Repo
	cfg    *config.Config
	keys   keyMap
	logger *slog.Logger
	help   *markdown.Renderer
	now    func() time.Time
	clip   func(string) error

	width, height int
	mode          mode

	// File list
	files    []repository.FileInfo
	order    fileOrder
	selected int
	listTop  int

	// File view
	tabs   []tab
	active int

	showHelp bool
	gotoOpen bool
	gotoIn   textinput.Model

	toast       string
	toastErr    bool
	toastExpiry time.Time
}

// New creates the model. copyFn writes text to the system clipboard.
func New(repo Repo, cfg *config.Config, logger *slog.Logger, copyFn func(string) error) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	in := textinput.New()
	in.Prompt = ":"
	in.Placeholder = "line"
	in.CharLimit = 20

	m := Model{
		repo:   repo,
		cfg:    cfg,
		keys:   defaultKeyMap(),
		logger: logger,
		help:   markdown.NewRenderer(styles.GetMarkdownTheme(), logger),
		now:    time.Now,
		clip:   copyFn,
		gotoIn: in,
	}
	m.refreshFiles()
	return m
}

// Init starts listening for repository changes and the refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.repo.Changes()), m.tick())
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.UI.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) copyLine(text string) tea.Cmd {
	copyFn := m.clip
	return func() tea.Msg {
		if copyFn == nil {
			return toastMsg{text: "clipboard unavailable", isError: true}
		}
		if err := copyFn(text); err != nil {
			return toastMsg{text: "copy failed: " + err.Error(), isError: true}
		}
		return toastMsg{text: "line copied"}
	}
}

// showToast displays a temporary status message.
func (m *Model) showToast(text string, isError bool) {
	m.toast = text
	m.toastErr = isError
	m.toastExpiry = m.now().Add(toastDuration)
}

// clearToast clears an expired toast.
func (m *Model) clearToast() {
	if m.toast != "" && m.now().After(m.toastExpiry) {
		m.toast = ""
		m.toastErr = false
	}
}

// refreshFiles reloads the file list, keeps the selection on the same file,
// and reconciles open tabs with the new line counts.
func (m *Model) refreshFiles() {
	var selectedName string
	if m.selected < len(m.files) {
		selectedName = m.files[m.selected].Name
	}

	m.files = m.repo.List()
	sortFiles(m.files, m.order)
	m.selected = m.indexOf(selectedName)

	var activeName string
	if m.active < len(m.tabs) {
		activeName = m.tabs[m.active].name
	}
	kept := m.tabs[:0]
	for _, t := range m.tabs {
		info, ok := m.file(t.name)
		if !ok {
			m.showToast(t.name+" was removed", true)
			continue
		}
		t.sync(info.Lines, m.viewHeight())
		kept = append(kept, t)
	}
	m.tabs = kept
	if len(m.tabs) == 0 {
		m.active = 0
		m.mode = modeList
	} else {
		m.active = min(m.active, len(m.tabs)-1)
		for i, t := range m.tabs {
			if t.name == activeName {
				m.active = i
			}
		}
	}
	m.clampList()
}

func (m *Model) indexOf(name string) int {
	for i, f := range m.files {
		if f.Name == name {
			return i
		}
	}
	return min(m.selected, max(len(m.files)-1, 0))
}

func (m *Model) file(name string) (repository.FileInfo, bool) {
	for _, f := range m.files {
		if f.Name == name {
			return f, true
		}
	}
	return repository.FileInfo{}, false
}

func (m *Model) activeTab() *tab {
	if m.mode != modeFile || m.active >= len(m.tabs) {
		return nil
	}
	return &m.tabs[m.active]
}

func (m *Model) activeLines() int {
	t := m.activeTab()
	if t == nil {
		return 0
	}
	info, _ := m.file(t.name)
	return info.Lines
}

// open shows name in the file view, reusing its tab when already open.
func (m *Model) open(name string) {
	m.mode = modeFile
	for i, t := range m.tabs {
		if t.name == name {
			m.active = i
			return
		}
	}
	t := tab{name: name, follow: m.cfg.UI.Follow}
	info, _ := m.file(name)
	t.sync(info.Lines, m.viewHeight())
	m.tabs = append(m.tabs, t)
	m.active = len(m.tabs) - 1
}

func (m *Model) closeTab() {
	if len(m.tabs) == 0 {
		return
	}
	m.tabs = append(m.tabs[:m.active], m.tabs[m.active+1:]...)
	if len(m.tabs) == 0 {
		m.active = 0
		m.mode = modeList
		return
	}
	m.active = min(m.active, len(m.tabs)-1)
}

// requestVisible asks the repository to load any visible line that is not
// cached yet.
func (m *Model) requestVisible() {
	t := m.activeTab()
	if t == nil {
		return
	}
	slots := m.repo.LinesOpt(t.name, t.offset, t.offset+m.viewHeight())
	cached := make([]bool, len(slots))
	for i, s := range slots {
		cached[i] = s.Cached
	}
	if start, end, ok := missing(t.offset, cached); ok {
		m.repo.RequestFetch(t.name, start, end)
	}
}

// viewHeight is the number of file lines shown between the tab bar and the
// footer.
func (m Model) viewHeight() int {
	return max(m.height-2, 1)
}

// listHeight is the number of file rows shown in the list.
func (m Model) listHeight() int {
	return max(m.height-3, 1)
}

func (m *Model) clampList() {
	if len(m.files) == 0 {
		m.selected, m.listTop = 0, 0
		return
	}
	h := m.listHeight()
	m.selected = min(max(m.selected, 0), len(m.files)-1)
	if m.selected < m.listTop {
		m.listTop = m.selected
	}
	if m.selected >= m.listTop+h {
		m.listTop = m.selected - h + 1
	}
}
