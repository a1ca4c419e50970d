package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/themekit/internal/tui/styles"
)

// QuickAction represents a keyboard-triggered action.
type QuickAction struct {
	Key     string // Keyboard key (e.g., "t", "d")
	Label   string // Display label (e.g., "Theme", "Dark")
	Enabled bool   // Whether the action is available
}

// RenderQuickActionBar renders a horizontal bar of available quick actions.
// Format: "t:Theme  d:Dark  r:Reset  +:Radius  -:Radius  q:Quit"
func RenderQuickActionBar(styleSet styles.Styles, actions []QuickAction) string {
	if len(actions) == 0 {
		return ""
	}

	var parts []string
	for _, action := range actions {
		if !action.Enabled {
			continue
		}
		keyStyle := styleSet.Focus
		labelStyle := styleSet.Muted
		part := fmt.Sprintf("%s:%s", keyStyle.Render(action.Key), labelStyle.Render(action.Label))
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, "  ")
}

// PreviewActions returns the preview shortcuts. Theme cycling is disabled
// while a theme is locked.
func PreviewActions(locked, supportsDark bool) []QuickAction {
	return []QuickAction{
		{Key: "t", Label: "Theme", Enabled: !locked},
		{Key: "d", Label: "Dark", Enabled: supportsDark},
		{Key: "r", Label: "Reset", Enabled: true},
		{Key: "+", Label: "Radius", Enabled: true},
		{Key: "-", Label: "Radius", Enabled: true},
		{Key: "v", Label: "Variables", Enabled: true},
		{Key: "q", Label: "Quit", Enabled: true},
	}
}

// RenderFooter renders the action bar centered in width.
func RenderFooter(styleSet styles.Styles, actions []QuickAction, width int) string {
	bar := RenderQuickActionBar(styleSet, actions)
	if bar == "" || width <= 0 {
		return bar
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(bar)
}
