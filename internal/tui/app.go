// Package tui implements the themekit terminal preview.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/opencode-ai/themekit/internal/theme"
	"github.com/opencode-ai/themekit/internal/tui/components"
	"github.com/opencode-ai/themekit/internal/tui/styles"
)

// Config wires the preview to a facade. Applicator must be the applicator
// the facade was built with so the preview renders what was applied.
type Config struct {
	Facade        *theme.Facade
	Registry      *registry.Registry
	Applicator    *styles.Applicator
	ShowVariables bool
}

// RunWithConfig launches the preview program.
func RunWithConfig(cfg Config) error {
	m := newModel(cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())

	unsubscribe := SubscribeToThemeChanges(cfg.Facade, program)
	defer unsubscribe()

	_, err := program.Run()
	return err
}

type model struct {
	width       int
	height      int
	facade      *theme.Facade
	registry    *registry.Registry
	applicator  *styles.Applicator
	styles      styles.Styles
	view        viewID
	lastAction  theme.Action
	lastUpdated time.Time
}

const (
	minWidth   = 50
	minHeight  = 14
	radiusStep = 0.25
	maxRadius  = 4
)

type viewID int

const (
	viewPreview viewID = iota
	viewVariables
)

func newModel(cfg Config) model {
	reg := cfg.Registry
	if reg == nil {
		reg = registry.Builtin()
	}
	m := model{
		facade:     cfg.Facade,
		registry:   reg,
		applicator: cfg.Applicator,
		styles:     styles.DefaultStyles(),
		view:       viewPreview,
	}
	if cfg.ShowVariables {
		m.view = viewVariables
	}
	if m.facade != nil {
		m.facade.Mount()
		m.lastAction = theme.ActionMount
		m.lastUpdated = time.Now()
	}
	m.refreshStyles()
	return m
}

func (m *model) refreshStyles() {
	if m.applicator != nil {
		m.styles = m.applicator.Styles()
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "v":
			if m.view == viewPreview {
				m.view = viewVariables
			} else {
				m.view = viewPreview
			}
		default:
			m.handleThemeKey(msg.String())
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case ThemeChangeMsg:
		m.lastAction = msg.Event.Action
		m.lastUpdated = time.Now()
		m.refreshStyles()
	}
	return m, nil
}

// handleThemeKey runs the facade mutator bound to key. Rendering catches up
// when the resulting ThemeChangeMsg arrives, or immediately without a program.
func (m *model) handleThemeKey(key string) {
	if m.facade == nil {
		return
	}
	switch key {
	case "t":
		m.facade.SetTheme(m.registry.Next(m.facade.Theme()))
	case "d":
		m.facade.ToggleDarkMode()
	case "r":
		m.facade.ResetCustomization()
	case "+", "=":
		m.scaleRadius(radiusStep)
	case "-", "_":
		m.scaleRadius(-radiusStep)
	default:
		return
	}
	m.refreshStyles()
}

func (m *model) scaleRadius(delta float64) {
	radius := m.facade.Customization().BorderRadius + delta
	if radius < radiusStep {
		radius = radiusStep
	}
	if radius > maxRadius {
		radius = maxRadius
	}
	m.facade.UpdateCustomization(models.CustomizationPatch{BorderRadius: &radius})
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 {
		if m.width < minWidth || m.height < minHeight {
			return fmt.Sprintf("%s\n", strings.Join(m.smallViewLines(), "\n"))
		}
	}

	lines := []string{
		m.styles.Title.Render("themekit preview"),
		"",
	}
	lines = append(lines, m.viewLines()...)
	lines = append(lines, "", m.styles.Muted.Render(m.lastUpdatedLine()))
	lines = append(lines, "", components.RenderFooter(m.styles, m.actions(), m.width))

	return fmt.Sprintf("%s\n", strings.Join(lines, "\n"))
}

func (m model) actions() []components.QuickAction {
	if m.facade == nil {
		return components.PreviewActions(true, false)
	}
	return components.PreviewActions(m.facade.LockedTheme() != "", m.facade.Definition().SupportsDarkMode)
}

func (m model) smallViewLines() []string {
	message := fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)
	hint := fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)

	return []string{
		m.styles.Error.Render(message),
		m.styles.Muted.Render(hint),
		m.styles.Muted.Render("Press q to quit."),
	}
}

func (m model) viewLines() []string {
	if m.facade == nil {
		return []string{components.EmptyVariables().Render(m.styles)}
	}

	def := m.facade.Definition()
	card := components.RenderThemeCard(m.styles, components.ThemeCard{
		Name:          def.Name,
		ID:            def.ID,
		IsDark:        m.facade.IsDark(),
		Locked:        m.facade.LockedTheme() != "",
		Customization: m.facade.Customization(),
	})
	lines := []string{card}

	if m.facade.IsDark() && !def.SupportsDarkMode {
		lines = append(lines, "", components.NoDarkVariant(def.Name).RenderCompact(m.styles))
	}

	if m.view == viewVariables {
		lines = append(lines, "")
		lines = append(lines, m.variableLines()...)
	}
	return lines
}

func (m model) variableLines() []string {
	var vars models.VariableSet
	if m.applicator != nil {
		vars = m.applicator.Variables()
	}
	if len(vars) == 0 {
		return []string{components.EmptyVariables().RenderCompact(m.styles)}
	}

	keys := vars.Keys()
	sort.Strings(keys)
	width := 0
	for _, key := range keys {
		if len(key) > width {
			width = len(key)
		}
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		value := vars[key]
		line := fmt.Sprintf("%-*s  %s", width, key, value)
		if hex, ok := styles.HexFromVariable(value); ok {
			line += "  " + m.styles.Muted.Render(hex)
		}
		lines = append(lines, m.styles.Text.Render(line))
	}
	return lines
}

func (m model) lastUpdatedLine() string {
	if m.lastUpdated.IsZero() {
		return "Last change: --"
	}
	return fmt.Sprintf("Last change: %s at %s", strings.ReplaceAll(string(m.lastAction), "_", " "), m.lastUpdated.Format("15:04:05"))
}
