package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and user input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.gotoIn.Width = max(msg.Width-4, 1)
		for i := range m.tabs {
			info, _ := m.file(m.tabs[i].name)
			m.tabs[i].sync(info.Lines, m.viewHeight())
		}
		m.clampList()

	case changedMsg:
		m.refreshFiles()
		cmd = waitForChange(m.repo.Changes())

	case tickMsg:
		m.clearToast()
		cmd = m.tick()

	case toastMsg:
		m.showToast(msg.text, msg.isError)

	case tea.KeyMsg:
		var quit bool
		m, cmd, quit = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
	}

	m.requestVisible()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, nil, true
	}
	if m.gotoOpen {
		m, cmd := m.handleGotoKey(msg)
		return m, cmd, false
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, nil, true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil, false
	}

	if m.mode == modeList {
		return m.handleListKey(msg), nil, false
	}
	m, cmd := m.handleFileKey(msg)
	return m, cmd, false
}

func (m Model) handleListKey(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.selected--
	case key.Matches(msg, m.keys.Down):
		m.selected++
	case key.Matches(msg, m.keys.PageUp):
		m.selected -= m.listHeight()
	case key.Matches(msg, m.keys.PageDown):
		m.selected += m.listHeight()
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = len(m.files) - 1
	case key.Matches(msg, m.keys.Open):
		if m.selected < len(m.files) {
			m.open(m.files[m.selected].Name)
		}
		return m
	case key.Matches(msg, m.keys.List, m.keys.Back):
		if len(m.tabs) > 0 {
			m.mode = modeFile
		}
		return m
	case key.Matches(msg, m.keys.SortName, m.keys.SortLines, m.keys.SortAge):
		if order, ok := sortKey(msg.String()); ok {
			m.order = order
			m.refreshFiles()
		}
		return m
	}
	m.clampList()
	return m
}

func (m Model) handleFileKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	t := m.activeTab()
	if t == nil {
		m.mode = modeList
		return m, nil
	}
	total, h := m.activeLines(), m.viewHeight()

	switch {
	case key.Matches(msg, m.keys.PageUp):
		t.page(-1, total, h)
	case key.Matches(msg, m.keys.PageDown):
		t.page(1, total, h)
	case key.Matches(msg, m.keys.Up):
		t.move(-1, total, h)
	case key.Matches(msg, m.keys.Down):
		t.move(1, total, h)
	case key.Matches(msg, m.keys.Top):
		t.top(total, h)
	case key.Matches(msg, m.keys.Bottom):
		t.bottom(total, h)
	case key.Matches(msg, m.keys.Follow):
		t.follow = !t.follow
		t.sync(total, h)
	case key.Matches(msg, m.keys.Goto):
		m.gotoOpen = true
		m.gotoIn.SetValue("")
		return m, m.gotoIn.Focus()
	case key.Matches(msg, m.keys.Copy):
		slots := m.repo.LinesOpt(t.name, t.cursor, t.cursor+1)
		if len(slots) == 0 || !slots[0].Cached {
			m.showToast("line not loaded yet", true)
			return m, nil
		}
		return m, m.copyLine(slots[0].Text)
	case key.Matches(msg, m.keys.List, m.keys.Back):
		m.mode = modeList
	case key.Matches(msg, m.keys.CloseTab):
		m.closeTab()
	case key.Matches(msg, m.keys.NextTab):
		m.active = (m.active + 1) % len(m.tabs)
	case key.Matches(msg, m.keys.PrevTab):
		m.active = (m.active - 1 + len(m.tabs)) % len(m.tabs)
	}
	return m, nil
}

func (m Model) handleGotoKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeGoto()
		return m, nil
	case tea.KeyEnter:
		input := strings.TrimSpace(m.gotoIn.Value())
		m.closeGoto()
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 {
			m.showToast("not a line number: "+input, true)
			return m, nil
		}
		if t := m.activeTab(); t != nil {
			t.jump(n-1, m.activeLines(), m.viewHeight())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.gotoIn, cmd = m.gotoIn.Update(msg)
	return m, cmd
}

func (m *Model) closeGoto() {
	m.gotoOpen = false
	m.gotoIn.Blur()
	m.gotoIn.SetValue("")
}
