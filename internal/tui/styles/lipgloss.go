package styles

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains lipgloss styles derived from theme tokens.
type Styles struct {
	Theme     Theme
	Title     lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style
	Panel     lipgloss.Style
	Border    lipgloss.Style
	Focus     lipgloss.Style
	Error     lipgloss.Style
	Sidebar   lipgloss.Style
	Active    lipgloss.Style
}

// DefaultStyles builds styles from the default theme.
func DefaultStyles() Styles {
	return BuildStyles(DefaultTheme)
}

// BuildStyles converts theme tokens into lipgloss styles. A zero radius
// draws square panel borders; font scale widens horizontal padding.
func BuildStyles(theme Theme) Styles {
	tokens := theme.Tokens

	border := lipgloss.NormalBorder()
	if theme.Radius > 0 {
		border = lipgloss.RoundedBorder()
	}

	return Styles{
		Theme:     theme,
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Bold(true),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)),
		Primary:   swatch(tokens.Primary, tokens.Text),
		Secondary: swatch(tokens.Secondary, tokens.Text),
		Accent:    swatch(tokens.Accent, tokens.Text),
		Panel: lipgloss.NewStyle().
			Foreground(lipgloss.Color(tokens.Text)).
			Background(lipgloss.Color(tokens.Panel)).
			BorderStyle(border).
			BorderForeground(lipgloss.Color(tokens.Border)).
			Padding(0, PaddingForScale(theme.FontScale)),
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Border)),
		Focus:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Focus)).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Error)),
		Sidebar: lipgloss.NewStyle().Background(lipgloss.Color(tokens.Sidebar)).Foreground(lipgloss.Color(tokens.Text)),
		Active:  lipgloss.NewStyle().Background(lipgloss.Color(tokens.SidebarActive)).Foreground(lipgloss.Color(tokens.Text)).Bold(true),
	}
}

func swatch(background, foreground string) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(background)).
		Foreground(lipgloss.Color(foreground)).
		Padding(0, 1)
}

// PaddingForScale maps a font size multiplier to horizontal cell padding.
func PaddingForScale(scale float64) int {
	if scale <= 0 {
		scale = 1
	}
	padding := int(math.Round(scale * 2))
	if padding < 1 {
		return 1
	}
	if padding > 6 {
		return 6
	}
	return padding
}
