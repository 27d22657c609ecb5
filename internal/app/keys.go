package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds every binding of the TUI.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Follow    key.Binding
	Goto      key.Binding
	Copy      key.Binding
	Open      key.Binding
	List      key.Binding
	CloseTab  key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	SortName  key.Binding
	SortLines key.Binding
	SortAge   key.Binding
	Help      key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "line up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "line down")),
		PageUp:    key.NewBinding(key.WithKeys("pgup", "shift+up", "ctrl+u"), key.WithHelp("pgup/shift+↑", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown", "shift+down", "ctrl+d"), key.WithHelp("pgdn/shift+↓", "page down")),
		Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first line")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last line")),
		Follow:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow the end of the file")),
		Goto:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "go to line")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy the selected line")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open file")),
		List:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "file list")),
		CloseTab:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close tab")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
		SortName:  key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n/N", "sort by name")),
		SortLines: key.NewBinding(key.WithKeys("l", "L"), key.WithHelp("l/L", "sort by line count")),
		SortAge:   key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a/A", "sort by age")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// helpMarkdown renders the bindings as a markdown document for the help
// overlay.
func (k keyMap) helpMarkdown() string {
	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"File list", []key.Binding{k.Up, k.Down, k.Open, k.SortName, k.SortLines, k.SortAge}},
		{"File view", []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Follow, k.Goto, k.Copy}},
		{"Tabs", []key.Binding{k.List, k.NextTab, k.PrevTab, k.CloseTab}},
		{"General", []key.Binding{k.Help, k.Back, k.Quit}},
	}

	var b strings.Builder
	b.WriteString("# Keys\n")
	for _, s := range sections {
		b.WriteString("\n## " + s.title + "\n\n")
		for _, kb := range s.bindings {
			h := kb.Help()
			b.WriteString("- `" + h.Key + "` " + h.Desc + "\n")
		}
	}
	b.WriteString("\nUppercase sort keys sort in descending order.\n")
	return b.String()
}
