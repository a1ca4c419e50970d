package styles

import (
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/resolver"
)

// ThemeTokens defines the semantic color roles for the TUI.
type ThemeTokens struct {
	Background    string
	Panel         string
	Text          string
	TextMuted     string
	Border        string
	Primary       string
	Secondary     string
	Accent        string
	Focus         string
	Error         string
	Sidebar       string
	SidebarActive string
}

// Theme bundles a palette with the layout scales taken from a variable set.
type Theme struct {
	Name      string
	Tokens    ThemeTokens
	Radius    float64
	FontScale float64
}

// tokenVariables maps each token to the CSS variable it is read from.
var tokenVariables = []struct {
	variable string
	field    func(*ThemeTokens) *string
}{
	{"--background", func(t *ThemeTokens) *string { return &t.Background }},
	{"--card", func(t *ThemeTokens) *string { return &t.Panel }},
	{"--foreground", func(t *ThemeTokens) *string { return &t.Text }},
	{"--muted-foreground", func(t *ThemeTokens) *string { return &t.TextMuted }},
	{"--border", func(t *ThemeTokens) *string { return &t.Border }},
	{models.VarPrimary, func(t *ThemeTokens) *string { return &t.Primary }},
	{models.VarSecondary, func(t *ThemeTokens) *string { return &t.Secondary }},
	{models.VarAccent, func(t *ThemeTokens) *string { return &t.Accent }},
	{"--ring", func(t *ThemeTokens) *string { return &t.Focus }},
	{"--destructive", func(t *ThemeTokens) *string { return &t.Error }},
	{"--sidebar-background", func(t *ThemeTokens) *string { return &t.Sidebar }},
	{"--sidebar-active", func(t *ThemeTokens) *string { return &t.SidebarActive }},
}

// ThemeFromVariables converts resolved CSS variables into a terminal theme.
// Variables that are missing or not HSL keep the DefaultTheme value.
func ThemeFromVariables(name string, vars models.VariableSet) Theme {
	theme := DefaultTheme
	theme.Name = name

	for _, tv := range tokenVariables {
		if hex, ok := HexFromVariable(vars[tv.variable]); ok {
			*tv.field(&theme.Tokens) = hex
		}
	}

	if value, _, ok := resolver.ParseLength(vars[models.VarRadius]); ok {
		theme.Radius = value
	}
	if value, _, ok := resolver.ParseLength(vars[models.VarFontSizeMultiplier]); ok && value > 0 {
		theme.FontScale = value
	}
	return theme
}
