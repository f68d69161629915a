package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type ThemeName string

const (
	ThemeDark  ThemeName = "dark"
	ThemeLight ThemeName = "light"
)

// Theme bundles the lipgloss styles the presenter frame is composed from.
type Theme struct {
	Name ThemeName

	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor

	Accent  lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Warn    lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor

	Title      lipgloss.Style
	TitleBusy  lipgloss.Style
	HeaderRule lipgloss.Style
	Muted      lipgloss.Style
	Spinner    lipgloss.Style

	Panel        lipgloss.Style
	PanelTitle   lipgloss.Style
	StepRunning  lipgloss.Style
	StepFinished lipgloss.Style
	Footer       lipgloss.Style
}

// NewTheme selects a theme by name, honoring RUNVIEW_NO_COLOR.
func NewTheme(name string) Theme {
	if os.Getenv("RUNVIEW_NO_COLOR") == "1" {
		return newNoColorTheme()
	}
	switch ThemeName(name) {
	case ThemeLight:
		return newLightTheme()
	default:
		return newDarkTheme()
	}
}

func newDarkTheme() Theme {
	t := Theme{
		Name:        ThemeDark,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1d2433", Dark: "#f2f2f2"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#4a5568", Dark: "#9aa0a6"},
		Accent:      lipgloss.AdaptiveColor{Light: "#1f6feb", Dark: "#7aa2ff"},
		Success:     lipgloss.AdaptiveColor{Light: "#0f766e", Dark: "#46d1b7"},
		Warn:        lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f4b27d"},
		Border:      lipgloss.AdaptiveColor{Light: "#cbd5e0", Dark: "#3a3a3a"},
	}
	return t.build()
}

func newLightTheme() Theme {
	t := Theme{
		Name:        ThemeLight,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#111827", Dark: "#eaeaea"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#b7b7b7"},
		Accent:      lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#5cc8ff"},
		Success:     lipgloss.AdaptiveColor{Light: "#059669", Dark: "#46d1b7"},
		Warn:        lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#f4b27d"},
		Border:      lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#2a2a2a"},
	}
	return t.build()
}

func newNoColorTheme() Theme {
	t := Theme{
		Name:        "no-color",
		TextPrimary: lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#333333", Dark: "#dddddd"},
		Accent:      lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"},
		Success:     lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"},
		Warn:        lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"},
		Border:      lipgloss.AdaptiveColor{Light: "#555555", Dark: "#777777"},
	}
	return t.build()
}

func (t Theme) build() Theme {
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.TitleBusy = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.HeaderRule = lipgloss.NewStyle().Foreground(t.Border)
	t.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.Spinner = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Panel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextMuted)
	t.StepRunning = lipgloss.NewStyle().Foreground(t.Warn)
	t.StepFinished = lipgloss.NewStyle().Foreground(t.Success)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	return t
}
