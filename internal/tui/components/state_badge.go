package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/themekit/internal/tui/styles"
)

// RenderModeBadge renders the dark/light mode with an icon.
func RenderModeBadge(styleSet styles.Styles, isDark bool) string {
	icon, label, style := modeDescriptor(styleSet, isDark)
	return style.Render(icon + " " + label)
}

func modeDescriptor(styleSet styles.Styles, isDark bool) (string, string, lipgloss.Style) {
	if isDark {
		return "D", "Dark", styleSet.Focus
	}
	return "L", "Light", styleSet.Muted
}

// RenderLockBadge marks a theme that is pinned by configuration.
func RenderLockBadge(styleSet styles.Styles) string {
	return styleSet.Error.Render("LOCKED")
}
