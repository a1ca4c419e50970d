package components

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/themekit/internal/tui/styles"
)

// EmptyState is a placeholder shown where there is nothing to display yet.
type EmptyState struct {
	Title       string
	Subtitle    string
	Suggestions []Suggestion
}

// Suggestion is a key or command the user can try next.
type Suggestion struct {
	Command     string
	Description string
}

// Render renders the title, subtitle and suggestion list.
func (e EmptyState) Render(styleSet styles.Styles) string {
	lines := []string{styleSet.Muted.Render(e.Title)}
	if e.Subtitle != "" {
		lines = append(lines, styleSet.Muted.Render(e.Subtitle))
	}
	if len(e.Suggestions) == 0 {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "", styleSet.Text.Render("Try:"))
	for _, s := range e.Suggestions {
		line := "  " + styleSet.Accent.Render(s.Command)
		if s.Description != "" {
			line += styleSet.Muted.Render("  # " + s.Description)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderCompact renders the title and first suggestion on one line.
func (e EmptyState) RenderCompact(styleSet styles.Styles) string {
	line := e.Title
	if len(e.Suggestions) > 0 {
		line += fmt.Sprintf(" (press %s)", e.Suggestions[0].Command)
	}
	return styleSet.Muted.Render(line)
}

// EmptyVariables returns an empty state for before any variables are applied.
func EmptyVariables() EmptyState {
	return EmptyState{
		Title:    "No variables applied yet",
		Subtitle: "Variables appear once the theme is mounted.",
	}
}

// NoDarkVariant returns an empty state for themes without a dark variant.
func NoDarkVariant(name string) EmptyState {
	return EmptyState{
		Title:    fmt.Sprintf("%s has no dark variant", name),
		Subtitle: "The light variables are shown instead.",
		Suggestions: []Suggestion{
			{Command: "t", Description: "try the next theme"},
		},
	}
}

// EmptyHistory returns an empty state for when no theme changes were recorded.
func EmptyHistory() EmptyState {
	return EmptyState{
		Title:    "No theme changes recorded yet",
		Subtitle: "Changes are recorded with the sqlite storage backend.",
		Suggestions: []Suggestion{
			{Command: "themekit set <theme-id>", Description: "select a theme"},
			{Command: "themekit toggle", Description: "switch dark mode"},
		},
	}
}
