package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rpsim/internal/rps"
)

// Theme defines the lattice and panel colors of the TUI.
type Theme struct {
	Name     string
	Empty    lipgloss.Color
	Rock     lipgloss.Color
	Paper    lipgloss.Color
	Scissors lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
}

// Available themes
var (
	ThemeClassic = Theme{
		Name:     "classic",
		Empty:    lipgloss.Color("#000000"),
		Rock:     lipgloss.Color("#ff0000"),
		Paper:    lipgloss.Color("#00ff00"),
		Scissors: lipgloss.Color("#0000ff"),
		Accent:   lipgloss.Color("#00ffff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666666"),
	}

	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Empty:    lipgloss.Color("#0a0a0a"),
		Rock:     lipgloss.Color("#ff00ff"), // Magenta
		Paper:    lipgloss.Color("#00ffff"), // Cyan
		Scissors: lipgloss.Color("#ffff00"), // Yellow
		Accent:   lipgloss.Color("#ff8800"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666666"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Empty:    lipgloss.Color("#001a33"),
		Rock:     lipgloss.Color("#ff6b6b"),
		Paper:    lipgloss.Color("#00a8cc"),
		Scissors: lipgloss.Color("#ffd700"),
		Accent:   lipgloss.Color("#00ff88"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
	}

	ThemeSunset = Theme{
		Name:     "sunset",
		Empty:    lipgloss.Color("#2d1b2e"),
		Rock:     lipgloss.Color("#ff4757"),
		Paper:    lipgloss.Color("#5fd068"),
		Scissors: lipgloss.Color("#feca57"),
		Accent:   lipgloss.Color("#ff9ff3"),
		Text:     lipgloss.Color("#fff5f5"),
		Muted:    lipgloss.Color("#8b6b8c"),
	}

	// Default theme
	CurrentTheme = ThemeClassic

	// All available themes
	Themes = []Theme{
		ThemeClassic,
		ThemeCyberpunk,
		ThemeOcean,
		ThemeSunset,
	}
)

// Color returns the color of a cell state.
func (t Theme) Color(s rps.Species) lipgloss.Color {
	switch s {
	case rps.Rock:
		return t.Rock
	case rps.Paper:
		return t.Paper
	case rps.Scissors:
		return t.Scissors
	}
	return t.Empty
}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
