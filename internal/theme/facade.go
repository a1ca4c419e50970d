// Package theme provides the facade every consumer uses to read and change
// the active theme.
package theme

import (
	"sort"
	"sync"

	"github.com/opencode-ai/themekit/internal/applicator"
	"github.com/opencode-ai/themekit/internal/logging"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/opencode-ai/themekit/internal/resolver"
	"github.com/opencode-ai/themekit/internal/store"
	"github.com/rs/zerolog"
)

// LifecycleState is the facade's position in its mount lifecycle.
type LifecycleState int

const (
	StateUninitialized LifecycleState = iota
	StateHydrating
	StateApplyingNoTransition
	StateSteady
)

func (s LifecycleState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateApplyingNoTransition:
		return "applying_no_transition"
	case StateSteady:
		return "steady"
	default:
		return "unknown"
	}
}

// Action names the operation that produced a ChangeEvent.
type Action string

const (
	ActionMount              Action = "mount"
	ActionSetTheme           Action = "set_theme"
	ActionSetDarkMode        Action = "set_dark_mode"
	ActionToggleDarkMode     Action = "toggle_dark_mode"
	ActionCustomize          Action = "customize"
	ActionResetCustomization Action = "reset_customization"
	ActionReset              Action = "reset"
	ActionForceApply         Action = "force_apply"
)

// ChangeEvent is delivered to subscribers after every facade operation.
type ChangeEvent struct {
	Action        Action
	ThemeID       string
	IsDark        bool
	Customization models.Customization
	Variables     models.VariableSet

	// RequestedThemeID and Outcome are set for ActionSetTheme.
	RequestedThemeID string
	Outcome          store.SetThemeOutcome
}

// Facade composes registry, resolver, store and applicator. All methods are
// synchronous and safe for concurrent use; none of them fail.
type Facade struct {
	registry   *registry.Registry
	store      *store.Store
	applicator applicator.Applicator
	logger     zerolog.Logger
	onState    func(LifecycleState)

	mu        sync.Mutex
	lifecycle LifecycleState
	current   models.VariableSet

	listenersMu sync.Mutex
	listeners   map[int]func(ChangeEvent)
	nextID      int
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Facade) {
		f.logger = logger
	}
}

// WithStateObserver registers a callback for lifecycle transitions. It is
// invoked while the facade lock is held and must not call back into the
// facade.
func WithStateObserver(fn func(LifecycleState)) Option {
	return func(f *Facade) {
		f.onState = fn
	}
}

// New creates a Facade. A nil applicator discards applies.
func New(reg *registry.Registry, st *store.Store, app applicator.Applicator, opts ...Option) *Facade {
	if reg == nil {
		reg = registry.Builtin()
	}
	if st == nil {
		st = store.New(reg, nil)
	}
	if app == nil {
		app = applicator.Nop{}
	}

	f := &Facade{
		registry:   reg,
		store:      st,
		applicator: app,
		logger:     logging.Component("theme"),
		listeners:  make(map[int]func(ChangeEvent)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Mount rehydrates persisted state and applies it with transitions
// suppressed. Calling Mount again is a no-op.
func (f *Facade) Mount() {
	f.mu.Lock()
	if f.lifecycle != StateUninitialized {
		f.mu.Unlock()
		return
	}

	f.setState(StateHydrating)
	f.store.Rehydrate()
	<-f.store.Hydrated()

	f.setState(StateApplyingNoTransition)
	vars := f.resolveLocked()
	f.applicator.ApplyWithoutTransition(vars)
	f.setState(StateSteady)

	event := f.eventLocked(ActionMount)
	f.mu.Unlock()

	f.emit(event)
}

// Lifecycle returns the current lifecycle state.
func (f *Facade) Lifecycle() LifecycleState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lifecycle
}

// HasHydrated reports whether persisted state has been read.
func (f *Facade) HasHydrated() bool {
	return f.store.HasHydrated()
}

// Theme returns the selected theme id.
func (f *Facade) Theme() string {
	return f.store.State().SelectedThemeID
}

// IsDark reports whether the dark variant is selected.
func (f *Facade) IsDark() bool {
	return f.store.State().IsDark
}

// Customization returns the active customization.
func (f *Facade) Customization() models.Customization {
	return f.store.State().Customization
}

// State returns the full persisted selection.
func (f *Facade) State() models.ThemeState {
	return f.store.State()
}

// Definition returns the definition of the selected theme.
func (f *Facade) Definition() models.ThemeDefinition {
	return f.registry.GetThemeConfig(f.Theme())
}

// Themes lists every registered theme in display order.
func (f *Facade) Themes() []models.ThemeDefinition {
	return f.registry.GetAllThemes()
}

// LockedTheme returns the locked theme id, or "" when unlocked.
func (f *Facade) LockedTheme() string {
	return f.store.LockedTheme()
}

// Variables returns the last applied variable set, or a fresh resolve when
// the facade has not mounted.
func (f *Facade) Variables() models.VariableSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		return f.current.Clone()
	}
	return f.resolveLocked()
}

// SetTheme selects a theme. Locked installations silently ignore other ids
// and unknown ids select the default theme.
func (f *Facade) SetTheme(id string) {
	f.SelectTheme(id)
}

// SelectTheme is SetTheme that also reports what the store did with id.
func (f *Facade) SelectTheme(id string) store.SetThemeOutcome {
	var outcome store.SetThemeOutcome
	f.mutate(ActionSetTheme, false, func(ev *ChangeEvent) {
		ev.RequestedThemeID = id
		ev.Outcome = f.store.SetTheme(id)
		outcome = ev.Outcome
	})
	return outcome
}

// ToggleDarkMode flips between light and dark variants.
func (f *Facade) ToggleDarkMode() {
	f.mutate(ActionToggleDarkMode, false, func(*ChangeEvent) {
		f.store.ToggleDarkMode()
	})
}

// SetDarkMode selects the dark or light variant.
func (f *Facade) SetDarkMode(isDark bool) {
	f.mutate(ActionSetDarkMode, false, func(*ChangeEvent) {
		f.store.SetIsDark(isDark)
	})
}

// UpdateCustomization merges a partial customization.
func (f *Facade) UpdateCustomization(patch models.CustomizationPatch) {
	f.mutate(ActionCustomize, false, func(*ChangeEvent) {
		f.store.UpdateCustomization(patch)
	})
}

// ResetCustomization restores default customization.
func (f *Facade) ResetCustomization() {
	f.mutate(ActionResetCustomization, false, func(*ChangeEvent) {
		f.store.ResetCustomization()
	})
}

// Reset restores default state, clears durable storage and reapplies
// without transitions.
func (f *Facade) Reset() {
	f.mutate(ActionReset, true, func(*ChangeEvent) {
		f.store.Reset()
	})
}

// ForceApply re-resolves and applies without transitions.
func (f *Facade) ForceApply() {
	f.mutate(ActionForceApply, true, func(*ChangeEvent) {})
}

// Subscribe registers fn for change events and returns a function that
// removes it. Events are delivered after the facade lock is released.
func (f *Facade) Subscribe(fn func(ChangeEvent)) func() {
	f.listenersMu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.listenersMu.Lock()
			delete(f.listeners, id)
			f.listenersMu.Unlock()
		})
	}
}

func (f *Facade) mutate(action Action, force bool, fn func(*ChangeEvent)) {
	f.Mount()

	f.mu.Lock()
	event := ChangeEvent{Action: action}
	fn(&event)

	vars := f.resolveLocked()
	if force {
		f.setState(StateApplyingNoTransition)
		f.applicator.ApplyWithoutTransition(vars)
		f.setState(StateSteady)
	} else {
		f.applicator.Apply(vars)
	}

	filled := f.eventLocked(action)
	filled.RequestedThemeID = event.RequestedThemeID
	filled.Outcome = event.Outcome
	f.mu.Unlock()

	f.logger.Debug().
		Str("action", string(action)).
		Str("theme_id", filled.ThemeID).
		Bool("is_dark", filled.IsDark).
		Msg("theme applied")

	f.emit(filled)
}

func (f *Facade) resolveLocked() models.VariableSet {
	state := f.store.State()
	def := f.registry.GetThemeConfig(state.SelectedThemeID)
	vars := resolver.Resolve(def, state.IsDark, state.Customization)
	f.current = vars
	return vars.Clone()
}

func (f *Facade) eventLocked(action Action) ChangeEvent {
	state := f.store.State()
	return ChangeEvent{
		Action:        action,
		ThemeID:       state.SelectedThemeID,
		IsDark:        state.IsDark,
		Customization: state.Customization,
		Variables:     f.current.Clone(),
	}
}

func (f *Facade) setState(next LifecycleState) {
	if f.lifecycle == next {
		return
	}
	f.logger.Trace().Str("from", f.lifecycle.String()).Str("to", next.String()).Msg("lifecycle transition")
	f.lifecycle = next
	if f.onState != nil {
		f.onState(next)
	}
}

func (f *Facade) emit(event ChangeEvent) {
	f.listenersMu.Lock()
	ids := make([]int, 0, len(f.listeners))
	for id := range f.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(ChangeEvent), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, f.listeners[id])
	}
	f.listenersMu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
