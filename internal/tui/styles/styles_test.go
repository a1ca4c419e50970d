package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/opencode-ai/themekit/internal/resolver"
)

func TestHexFromHSL(t *testing.T) {
	tests := []struct {
		hsl  models.HSL
		want string
	}{
		{models.HSL{H: 0, S: 0, L: 100}, "#ffffff"},
		{models.HSL{H: 0, S: 0, L: 0}, "#000000"},
		{models.HSL{H: 0, S: 100, L: 50}, "#ff0000"},
		{models.HSL{H: 120, S: 100, L: 50}, "#00ff00"},
		{models.HSL{H: 240, S: 100, L: 50}, "#0000ff"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HexFromHSL(tt.hsl), tt.hsl.String())
	}
}

func TestHexFromVariable(t *testing.T) {
	hex, ok := HexFromVariable("0 0% 100%")
	require.True(t, ok)
	assert.Equal(t, "#ffffff", hex)

	_, ok = HexFromVariable("0.5rem")
	assert.False(t, ok)
}

func TestThemeFromVariables(t *testing.T) {
	def := registry.Builtin().GetThemeConfig("neutral-pro")
	vars := resolver.Resolve(def, false, models.DefaultCustomization())

	theme := ThemeFromVariables(def.Name, vars)
	assert.Equal(t, "Neutral Pro", theme.Name)
	assert.Equal(t, "#ffffff", theme.Tokens.Background)
	assert.Equal(t, HexFromHSL(models.DefaultCustomization().PrimaryColor), theme.Tokens.Primary)
	assert.InDelta(t, 0.5, theme.Radius, 1e-9)
	assert.InDelta(t, 1.0, theme.FontScale, 1e-9)
}

func TestThemeFromVariablesKeepsDefaults(t *testing.T) {
	theme := ThemeFromVariables("partial", models.VariableSet{"--primary": "not a color"})
	assert.Equal(t, DefaultTheme.Tokens, theme.Tokens)
	assert.Equal(t, DefaultTheme.Radius, theme.Radius)
}

func TestBuildStylesBorders(t *testing.T) {
	rounded := DefaultTheme
	rounded.Radius = 1
	assert.Equal(t, lipgloss.RoundedBorder(), BuildStyles(rounded).Panel.GetBorderStyle())

	square := DefaultTheme
	square.Radius = 0
	assert.Equal(t, lipgloss.NormalBorder(), BuildStyles(square).Panel.GetBorderStyle())
}

func TestPaddingForScale(t *testing.T) {
	assert.Equal(t, 2, PaddingForScale(1))
	assert.Equal(t, 2, PaddingForScale(0))
	assert.Equal(t, 1, PaddingForScale(0.2))
	assert.Equal(t, 3, PaddingForScale(1.5))
	assert.Equal(t, 6, PaddingForScale(10))
}

func TestApplicatorRebuildsStyles(t *testing.T) {
	var seen []Styles
	app := NewApplicator(func(s Styles) { seen = append(seen, s) })
	assert.Equal(t, DefaultTheme.Tokens, app.Styles().Theme.Tokens)

	def := registry.Builtin().GetThemeConfig("paper")
	vars := resolver.Resolve(def, false, models.DefaultCustomization())

	app.ApplyWithoutTransition(vars)
	app.Apply(vars)

	assert.Equal(t, 2, app.Applies())
	require.Len(t, seen, 2)
	assert.Equal(t, AppliedThemeName, app.Styles().Theme.Name)
	assert.True(t, app.Variables().Equal(vars))
	assert.True(t, strings.HasPrefix(app.Styles().Theme.Tokens.Background, "#"))
}
