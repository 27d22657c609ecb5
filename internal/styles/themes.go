package styles

import (
	"regexp"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// themeMu protects themeRegistry and currentTheme
var themeMu sync.RWMutex

// hexColorRegex validates hex color codes (#RRGGBB or #RRGGBBAA with alpha)
var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// ColorPalette holds all theme colors
type ColorPalette struct {
	// Brand colors
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`

	// Status colors
	Success string `json:"success"`
	Warning string `json:"warning"`
	Error   string `json:"error"`
	Info    string `json:"info"`

	// Text colors
	TextPrimary   string `json:"textPrimary"`
	TextSecondary string `json:"textSecondary"`
	TextMuted     string `json:"textMuted"`
	TextSubtle    string `json:"textSubtle"`

	// Background colors
	BgPrimary   string `json:"bgPrimary"`
	BgSecondary string `json:"bgSecondary"`
	BgTertiary  string `json:"bgTertiary"`

	// Border colors
	BorderNormal string `json:"borderNormal"`
	BorderActive string `json:"borderActive"`

	// Glamour theme name for the help overlay
	MarkdownTheme string `json:"markdownTheme"`
}

// Theme represents a complete theme configuration
type Theme struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Colors      ColorPalette `json:"colors"`
}

// Built-in themes
var (
	// DefaultTheme is the default dark theme
	DefaultTheme = Theme{
		Name:        "default",
		DisplayName: "Default Dark",
		Colors: ColorPalette{
			Primary:   "#7C3AED", // Purple
			Secondary: "#3B82F6", // Blue
			Accent:    "#F59E0B", // Amber

			Success: "#10B981",
			Warning: "#F59E0B",
			Error:   "#EF4444",
			Info:    "#3B82F6",

			TextPrimary:   "#F9FAFB",
			TextSecondary: "#9CA3AF",
			TextMuted:     "#6B7280",
			TextSubtle:    "#4B5563",

			BgPrimary:   "#111827",
			BgSecondary: "#1F2937",
			BgTertiary:  "#374151",

			BorderNormal: "#374151",
			BorderActive: "#7C3AED",

			MarkdownTheme: "dark",
		},
	}

	// DraculaTheme is a Dracula-inspired dark theme
	DraculaTheme = Theme{
		Name:        "dracula",
		DisplayName: "Dracula",
		Colors: ColorPalette{
			Primary:   "#BD93F9", // Purple
			Secondary: "#8BE9FD", // Cyan
			Accent:    "#FFB86C", // Orange

			Success: "#50FA7B",
			Warning: "#FFB86C",
			Error:   "#FF5555",
			Info:    "#8BE9FD",

			TextPrimary:   "#F8F8F2", // Foreground
			TextSecondary: "#BFBFBF",
			TextMuted:     "#6272A4", // Comment
			TextSubtle:    "#44475A", // Current Line

			BgPrimary:   "#282A36",
			BgSecondary: "#343746",
			BgTertiary:  "#44475A",

			BorderNormal: "#44475A",
			BorderActive: "#BD93F9",

			MarkdownTheme: "dracula",
		},
	}

	// NordTheme uses the Nord arctic palette
	NordTheme = Theme{
		Name:        "nord",
		DisplayName: "Nord",
		Colors: ColorPalette{
			Primary:   "#88C0D0", // Frost Cyan
			Secondary: "#81A1C1", // Frost Blue
			Accent:    "#EBCB8B", // Aurora Yellow

			Success: "#A3BE8C",
			Warning: "#EBCB8B",
			Error:   "#BF616A",
			Info:    "#88C0D0",

			TextPrimary:   "#D8DEE9",
			TextSecondary: "#E5E9F0",
			TextMuted:     "#4C566A",
			TextSubtle:    "#434C5E",

			BgPrimary:   "#2E3440",
			BgSecondary: "#3B4252",
			BgTertiary:  "#434C5E",

			BorderNormal: "#4C566A",
			BorderActive: "#88C0D0",

			MarkdownTheme: "dark",
		},
	}

	// TokyoNightTheme is based on the Tokyo Night palette
	TokyoNightTheme = Theme{
		Name:        "tokyo-night",
		DisplayName: "Tokyo Night",
		Colors: ColorPalette{
			Primary:   "#7AA2F7", // Blue
			Secondary: "#BB9AF7", // Purple
			Accent:    "#FF9E64", // Orange

			Success: "#9ECE6A",
			Warning: "#E0AF68",
			Error:   "#F7768E",
			Info:    "#7DCFFF",

			TextPrimary:   "#C0CAF5",
			TextSecondary: "#A9B1D6",
			TextMuted:     "#565F89",
			TextSubtle:    "#414868",

			BgPrimary:   "#1A1B26",
			BgSecondary: "#24283B",
			BgTertiary:  "#414868",

			BorderNormal: "#565F89",
			BorderActive: "#7AA2F7",

			MarkdownTheme: "tokyo-night",
		},
	}
)

// themeRegistry holds all available themes
var themeRegistry = map[string]Theme{
	"default":     DefaultTheme,
	"dracula":     DraculaTheme,
	"nord":        NordTheme,
	"tokyo-night": TokyoNightTheme,
}

// currentTheme tracks the active theme name
var currentTheme = "default"

// IsValidHexColor checks if a string is a valid hex color code (#RRGGBB or #RRGGBBAA)
func IsValidHexColor(hex string) bool {
	return hexColorRegex.MatchString(hex)
}

// IsValidTheme checks if a theme name exists in the registry
func IsValidTheme(name string) bool {
	themeMu.RLock()
	defer themeMu.RUnlock()
	_, ok := themeRegistry[name]
	return ok
}

// GetTheme returns a theme by name, or the default theme if not found
func GetTheme(name string) Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	if theme, ok := themeRegistry[name]; ok {
		return theme
	}
	return DefaultTheme
}

// GetCurrentThemeName returns the name of the currently active theme
func GetCurrentThemeName() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// ListThemes returns the names of all available themes in sorted order
func ListThemes() []string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	names := make([]string, 0, len(themeRegistry))
	for name := range themeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyTheme applies a theme by name, updating all style variables.
// Unknown names fall back to the default theme.
//
// Not safe to call while the TUI is rendering; call it before the program
// starts.
func ApplyTheme(name string) {
	theme := GetTheme(name)
	applyColors(theme.Colors)
	themeMu.Lock()
	currentTheme = theme.Name
	themeMu.Unlock()
}

func applyColors(c ColorPalette) {
	Primary = lipgloss.Color(c.Primary)
	Secondary = lipgloss.Color(c.Secondary)
	Accent = lipgloss.Color(c.Accent)

	Success = lipgloss.Color(c.Success)
	Warning = lipgloss.Color(c.Warning)
	Error = lipgloss.Color(c.Error)
	Info = lipgloss.Color(c.Info)

	TextPrimary = lipgloss.Color(c.TextPrimary)
	TextSecondary = lipgloss.Color(c.TextSecondary)
	TextMuted = lipgloss.Color(c.TextMuted)
	TextSubtle = lipgloss.Color(c.TextSubtle)

	BgPrimary = lipgloss.Color(c.BgPrimary)
	BgSecondary = lipgloss.Color(c.BgSecondary)
	BgTertiary = lipgloss.Color(c.BgTertiary)

	BorderNormal = lipgloss.Color(c.BorderNormal)
	BorderActive = lipgloss.Color(c.BorderActive)

	ScrollbarTrackColor = BorderNormal
	ScrollbarThumbColor = TextSecondary

	CurrentMarkdownTheme = c.MarkdownTheme

	rebuildStyles()
}

// GetMarkdownTheme returns the current markdown rendering theme name
func GetMarkdownTheme() string {
	return CurrentMarkdownTheme
}
