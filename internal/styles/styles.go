// Package styles holds the lipgloss colors and styles shared by the TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Colors, set by ApplyTheme.
var (
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextSubtle    lipgloss.Color

	BgPrimary   lipgloss.Color
	BgSecondary lipgloss.Color
	BgTertiary  lipgloss.Color

	BorderNormal lipgloss.Color
	BorderActive lipgloss.Color

	ScrollbarTrackColor lipgloss.Color
	ScrollbarThumbColor lipgloss.Color

	CurrentMarkdownTheme string
)

// Styles, rebuilt by ApplyTheme.
var (
	PanelActive   lipgloss.Style
	PanelInactive lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	KeyHint  lipgloss.Style
	Logo     lipgloss.Style

	// File list
	TableHeader      lipgloss.Style
	ListItemNormal   lipgloss.Style
	ListItemSelected lipgloss.Style
	ListCursor       lipgloss.Style

	// File view
	TabActive       lipgloss.Style
	TabInactive     lipgloss.Style
	LineNumber      lipgloss.Style
	CursorLine      lipgloss.Style
	Placeholder     lipgloss.Style
	LevelError      lipgloss.Style
	LevelWarn       lipgloss.Style
	FollowIndicator lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style

	ModalBox   lipgloss.Style
	ModalTitle lipgloss.Style
)

func init() {
	ApplyTheme("default")
}

// rebuildStyles recreates all lipgloss styles with current colors
func rebuildStyles() {
	PanelActive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive)

	PanelInactive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderNormal)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	Body = lipgloss.NewStyle().
		Foreground(TextPrimary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Subtle = lipgloss.NewStyle().
		Foreground(TextSubtle)

	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)

	Logo = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	TableHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	ListItemNormal = lipgloss.NewStyle().
		Foreground(TextPrimary)

	ListItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(BgTertiary)

	ListCursor = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	TabActive = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Bold(true).
		Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgSecondary).
		Padding(0, 1)

	LineNumber = lipgloss.NewStyle().
		Foreground(TextMuted).
		AlignHorizontal(lipgloss.Right)

	CursorLine = lipgloss.NewStyle().
		Background(BgTertiary)

	Placeholder = lipgloss.NewStyle().
		Foreground(TextSubtle).
		Italic(true)

	LevelError = lipgloss.NewStyle().
		Foreground(Error)

	LevelWarn = lipgloss.NewStyle().
		Foreground(Warning)

	FollowIndicator = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Header = lipgloss.NewStyle().
		Background(BgSecondary)

	Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgSecondary)

	ToastSuccess = lipgloss.NewStyle().
		Background(Success).
		Foreground(BgPrimary).
		Bold(true).
		Padding(0, 1)

	ToastError = lipgloss.NewStyle().
		Background(Error).
		Foreground(TextPrimary).
		Bold(true).
		Padding(0, 1)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Background(BgSecondary).
		Padding(1, 2)

	ModalTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginBottom(1)
}
