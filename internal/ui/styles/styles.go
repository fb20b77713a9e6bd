// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/perch/internal/config"
)

// Styles are the sorter's styles, derived from the configured theme.
type Styles struct {
	Highlight lipgloss.Color
	Subtle    lipgloss.Color
	Error     lipgloss.Color

	Title     lipgloss.Style
	Selected  lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	ErrorText lipgloss.Style
	Added     lipgloss.Style
	Removed   lipgloss.Style

	// SelectionIndicator is the ">" prefix in front of the selected scene.
	SelectionIndicator lipgloss.Style
}

// New builds styles from theme, falling back to the default theme for unset colors.
func New(theme config.ThemeConfig) Styles {
	def := config.Defaults().Theme
	pick := func(v, fallback string) lipgloss.Color {
		if v == "" {
			return lipgloss.Color(fallback)
		}
		return lipgloss.Color(v)
	}

	s := Styles{
		Highlight: pick(theme.Highlight, def.Highlight),
		Subtle:    pick(theme.Subtle, def.Subtle),
		Error:     pick(theme.Error, def.Error),
	}
	s.Title = lipgloss.NewStyle().Bold(true).Foreground(s.Highlight)
	s.Selected = lipgloss.NewStyle().Bold(true).Foreground(s.Highlight)
	s.Normal = lipgloss.NewStyle()
	s.Muted = lipgloss.NewStyle().Foreground(s.Subtle)
	s.ErrorText = lipgloss.NewStyle().Foreground(s.Error)
	s.Added = lipgloss.NewStyle().Foreground(s.Highlight)
	s.Removed = lipgloss.NewStyle().Foreground(s.Error)
	s.SelectionIndicator = lipgloss.NewStyle().Bold(true).Foreground(s.Highlight)
	return s
}
