package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/tailview/internal/styles"
	"github.com/wilbur182/tailview/internal/ui"
)

const (
	tabWidth        = 4
	linesColWidth   = 9
	ageColWidth     = 6
	sizeColWidth    = 10
	updatedColWidth = 19
	updatedLayout   = "2006-01-02 15:04:05"
	placeholderText = "…"
)

// View renders the model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var body string
	if m.mode == modeFile && len(m.tabs) > 0 {
		body = m.renderFileView()
	} else {
		body = m.renderFileList()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m Model) renderFileList() string {
	var b strings.Builder

	title := styles.Logo.Render("tailview") + styles.Muted.Render(fmt.Sprintf("  %d files · sorted by %s", len(m.files), m.order.column))
	b.WriteString(styles.Header.Width(m.width).Render(ansi.Truncate(title, m.width, placeholderText)))
	b.WriteString("\n")

	nameWidth := max(m.width-linesColWidth-ageColWidth-sizeColWidth-updatedColWidth-6, 8)
	b.WriteString(styles.TableHeader.Render(m.listRow("Name", "Lines", "Age", "Size", "Last update", nameWidth)))

	h := m.listHeight()
	if len(m.files) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render("  no matching files yet"))
		return padRows(b.String(), h+2)
	}

	now := m.now()
	end := min(m.listTop+h, len(m.files))
	for i := m.listTop; i < end; i++ {
		f := m.files[i]
		row := m.listRow(
			f.Name,
			strconv.Itoa(f.Lines),
			ui.FormatAge(now.Sub(f.LastUpdate)),
			ui.FormatBytes(f.Size),
			f.LastUpdate.Format(updatedLayout),
			nameWidth,
		)
		b.WriteString("\n")
		if i == m.selected {
			b.WriteString(styles.ListCursor.Render("▸") + styles.ListItemSelected.Render(row))
		} else {
			b.WriteString(" " + styles.ListItemNormal.Render(row))
		}
	}
	return padRows(b.String(), h+2)
}

func (m Model) listRow(name, lines, age, size, updated string, nameWidth int) string {
	return strings.Join([]string{
		ui.PadRight(name, nameWidth),
		ui.PadLeft(lines, linesColWidth),
		ui.PadLeft(age, ageColWidth),
		ui.PadLeft(size, sizeColWidth),
		ui.PadRight(updated, updatedColWidth),
	}, " ")
}

func (m Model) renderTabs() string {
	parts := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.active {
			parts[i] = styles.TabActive.Render(t.name)
		} else {
			parts[i] = styles.TabInactive.Render(t.name)
		}
	}
	bar := strings.Join(parts, " ")
	return styles.Header.Width(m.width).Render(ansi.Truncate(bar, m.width, placeholderText))
}

func (m Model) renderFileView() string {
	t := m.tabs[m.active]
	info, _ := m.file(t.name)
	h := m.viewHeight()

	gutter := ui.DigitWidth(info.Lines) + 1
	textWidth := max(m.width-gutter-2, 1)

	slots := m.repo.LinesOpt(t.name, t.offset, t.offset+h)
	rows := make([]string, 0, h)
	for i, s := range slots {
		n := t.offset + i
		num := styles.LineNumber.Render(ui.PadLeft(strconv.Itoa(n+1), gutter-1))

		var text string
		if s.Cached {
			text = ansi.Truncate(ui.ExpandTabs(s.Text, tabWidth), textWidth, placeholderText)
			text = highlightLevel(text)
		} else {
			text = styles.Placeholder.Render(placeholderText)
		}
		if n == t.cursor {
			text = styles.CursorLine.Width(textWidth).Render(text)
		}
		rows = append(rows, num+" "+text)
	}
	content := lipgloss.NewStyle().Width(m.width - 1).Render(padRows(strings.Join(rows, "\n"), h))

	bar := ui.Scrollbar{Total: info.Lines, Offset: t.offset, Visible: h, Height: h}.Render()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		lipgloss.JoinHorizontal(lipgloss.Top, content, bar),
	)
}

// highlightLevel colors lines that carry an error or warning level.
func highlightLevel(line string) string {
	switch {
	case strings.Contains(line, "ERROR"), strings.Contains(line, "FATAL"), strings.Contains(line, "PANIC"):
		return styles.LevelError.Render(line)
	case strings.Contains(line, "WARN"):
		return styles.LevelWarn.Render(line)
	}
	return line
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.gotoOpen:
		left = m.gotoIn.View()
	case m.toast != "" && m.toastErr:
		left = styles.ToastError.Render(m.toast)
	case m.toast != "":
		left = styles.ToastSuccess.Render(m.toast)
	default:
		left = m.hints()
	}

	var right string
	if t := m.activeTab(); t != nil {
		total := m.activeLines()
		right = fmt.Sprintf("%d/%d", min(t.cursor+1, total), total)
		if t.follow {
			right = styles.FollowIndicator.Render("FOLLOW") + " " + right
		}
	}

	gap := max(m.width-ansi.StringWidth(left)-ansi.StringWidth(right), 1)
	line := left + strings.Repeat(" ", gap) + right
	return styles.Footer.Width(m.width).Render(ansi.Truncate(line, m.width, ""))
}

func (m Model) hints() string {
	hints := []string{styles.KeyHint.Render(m.keys.Open.Help().Key) + " open"}
	if m.mode == modeFile {
		hints = []string{
			styles.KeyHint.Render(m.keys.Follow.Help().Key) + " follow",
			styles.KeyHint.Render(m.keys.Goto.Help().Key) + " goto",
			styles.KeyHint.Render(m.keys.List.Help().Key) + " files",
		}
	}
	hints = append(hints, styles.KeyHint.Render("?")+" help", styles.KeyHint.Render("q")+" quit")
	return strings.Join(hints, "  ")
}

func (m Model) renderHelp() string {
	width := min(m.width-6, 72)
	lines := m.help.Render(m.keys.helpMarkdown(), width)
	maxRows := max(m.height-6, 1)
	if len(lines) > maxRows {
		lines = lines[:maxRows]
	}
	box := styles.ModalBox.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// padRows pads s with empty lines up to n rows so the footer stays at the
// bottom.
func padRows(s string, n int) string {
	rows := strings.Count(s, "\n") + 1
	if s == "" {
		rows = 0
	}
	if rows >= n {
		return s
	}
	if s == "" {
		return strings.Repeat("\n", n-1)
	}
	return s + strings.Repeat("\n", n-rows)
}
