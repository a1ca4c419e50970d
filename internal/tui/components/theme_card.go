// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/tui/styles"
)

const themeCardWidth = 44

// ThemeCard contains data needed to render the active theme card.
type ThemeCard struct {
	Name          string
	ID            string
	IsDark        bool
	Locked        bool
	Customization models.Customization
}

// RenderThemeCard renders the active theme with swatches and scales.
func RenderThemeCard(styleSet styles.Styles, card ThemeCard) string {
	header := fmt.Sprintf("%s %s",
		styleSet.Title.Render(defaultIfEmpty(card.Name, card.ID)),
		RenderModeBadge(styleSet, card.IsDark),
	)
	if card.Locked {
		header += " " + RenderLockBadge(styleSet)
	}

	swatches := strings.Join([]string{
		styleSet.Primary.Render("primary"),
		styleSet.Secondary.Render("secondary"),
		styleSet.Accent.Render("accent"),
	}, " ")

	c := card.Customization
	scales := styleSet.Muted.Render(fmt.Sprintf("Radius: %sx  Font: %sx",
		models.FormatNumber(c.BorderRadius),
		models.FormatNumber(c.FontSize),
	))

	content := strings.Join([]string{
		header,
		styleSet.Muted.Render(card.ID),
		"",
		swatches,
		scales,
	}, "\n")

	return styleSet.Panel.Copy().Width(themeCardWidth).Render(content)
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
