package styles

import (
	"sync"

	"github.com/opencode-ai/themekit/internal/applicator"
	"github.com/opencode-ai/themekit/internal/models"
)

// Applicator renders applied variables into lipgloss styles. Terminals have no
// transitions, so both apply paths rebuild the styles immediately.
type Applicator struct {
	mu       sync.RWMutex
	styles   Styles
	vars     models.VariableSet
	applies  int
	onChange func(Styles)
}

var _ applicator.Applicator = (*Applicator)(nil)

// AppliedThemeName names themes built from applied variables.
const AppliedThemeName = "applied"

// NewApplicator creates an Applicator starting from DefaultStyles.
// onChange, when set, is called after every apply with the new styles.
func NewApplicator(onChange func(Styles)) *Applicator {
	return &Applicator{
		styles:   DefaultStyles(),
		onChange: onChange,
	}
}

// Apply implements applicator.Applicator.
func (a *Applicator) Apply(vars models.VariableSet) {
	a.apply(vars)
}

// ApplyWithoutTransition implements applicator.Applicator.
func (a *Applicator) ApplyWithoutTransition(vars models.VariableSet) {
	a.apply(vars)
}

func (a *Applicator) apply(vars models.VariableSet) {
	a.mu.Lock()
	a.vars = vars.Clone()
	a.styles = BuildStyles(ThemeFromVariables(AppliedThemeName, vars))
	a.applies++
	styles := a.styles
	onChange := a.onChange
	a.mu.Unlock()

	if onChange != nil {
		onChange(styles)
	}
}

// Styles returns the most recently built styles.
func (a *Applicator) Styles() Styles {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.styles
}

// Variables returns a copy of the most recently applied variables.
func (a *Applicator) Variables() models.VariableSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.vars.Clone()
}

// Applies returns how many times variables were applied.
func (a *Applicator) Applies() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.applies
}
