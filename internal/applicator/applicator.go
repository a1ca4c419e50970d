// Package applicator writes resolved variable sets onto a document root.
//
// DocumentApplicator is the only code that touches a Document's style
// surface. Everything else depends on the Applicator interface so tests and
// non-browser contexts can substitute a no-op or in-memory implementation.
package applicator

import (
	"sync"
	"time"

	"github.com/opencode-ai/themekit/internal/logging"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/rs/zerolog"
)

// DefaultTransitionDelay bounds how long transitions stay disabled after a
// no-transition apply. One frame at 60Hz.
const DefaultTransitionDelay = 16 * time.Millisecond

// Transition suppression rule injected during no-transition applies.
const (
	SuppressRuleID  = "themekit-disable-transitions"
	SuppressRuleCSS = "*,*::before,*::after{-webkit-transition:none!important;transition:none!important}"
)

// Applicator applies variable sets to a style surface.
type Applicator interface {
	// Apply writes vars with transitions enabled.
	Apply(vars models.VariableSet)
	// ApplyWithoutTransition writes vars with transitions suppressed for a
	// bounded window.
	ApplyWithoutTransition(vars models.VariableSet)
}

// Document is the style surface of a live document root.
type Document interface {
	// SetProperty sets an inline custom property on the root element.
	SetProperty(name, value string)
	// InsertRule adds a global stylesheet rule identified by id.
	InsertRule(id, css string)
	// RemoveRule removes the rule identified by id.
	RemoveRule(id string)
	// Reflow forces a synchronous style and layout flush.
	Reflow()
}

// Phase marks a step of the no-transition protocol.
type Phase int

const (
	PhaseTransitionsDisabled Phase = iota + 1
	PhaseValuesCommitted
	PhaseTransitionsRestored
)

func (p Phase) String() string {
	switch p {
	case PhaseTransitionsDisabled:
		return "transitions_disabled"
	case PhaseValuesCommitted:
		return "values_committed"
	case PhaseTransitionsRestored:
		return "transitions_restored"
	default:
		return "unknown"
	}
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred work.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// DocumentApplicator applies variable sets to a Document. A nil Document
// turns every call into a no-op.
type DocumentApplicator struct {
	doc      Document
	delay    time.Duration
	clock    Clock
	observer func(Phase)
	logger   zerolog.Logger

	mu         sync.Mutex
	pending    Timer
	generation uint64
}

// Option configures a DocumentApplicator.
type Option func(*DocumentApplicator)

// WithTransitionDelay overrides DefaultTransitionDelay.
func WithTransitionDelay(d time.Duration) Option {
	return func(a *DocumentApplicator) {
		if d > 0 {
			a.delay = d
		}
	}
}

// WithClock overrides the scheduler used for transition cleanup.
func WithClock(c Clock) Option {
	return func(a *DocumentApplicator) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithPhaseObserver registers a callback invoked after each protocol phase.
// The callback runs outside the applicator lock.
func WithPhaseObserver(fn func(Phase)) Option {
	return func(a *DocumentApplicator) {
		a.observer = fn
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *DocumentApplicator) {
		a.logger = logger
	}
}

// New creates a DocumentApplicator for doc.
func New(doc Document, opts ...Option) *DocumentApplicator {
	a := &DocumentApplicator{
		doc:    doc,
		delay:  DefaultTransitionDelay,
		clock:  realClock{},
		logger: logging.Component("applicator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply implements Applicator.
func (a *DocumentApplicator) Apply(vars models.VariableSet) {
	if a.doc == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.write(vars)
}

// ApplyWithoutTransition implements Applicator. Transitions are disabled,
// the document is reflowed so the disable takes effect, values are written
// and reflowed again, and the suppression rule is removed after the
// configured delay. A call inside an open window reuses the rule and
// restarts the delay.
func (a *DocumentApplicator) ApplyWithoutTransition(vars models.VariableSet) {
	if a.doc == nil {
		return
	}

	var phases []Phase

	a.mu.Lock()
	if a.pending == nil {
		a.doc.InsertRule(SuppressRuleID, SuppressRuleCSS)
		phases = append(phases, PhaseTransitionsDisabled)
	} else {
		a.pending.Stop()
	}
	a.doc.Reflow()

	a.write(vars)
	a.doc.Reflow()
	phases = append(phases, PhaseValuesCommitted)

	a.generation++
	gen := a.generation
	a.pending = a.clock.AfterFunc(a.delay, func() {
		a.restore(gen)
	})
	a.mu.Unlock()

	a.logger.Trace().Int("vars", len(vars)).Dur("delay", a.delay).Msg("applied without transition")
	a.notify(phases...)
}

// Flush restores transitions immediately if a window is open.
func (a *DocumentApplicator) Flush() {
	a.mu.Lock()
	if a.pending == nil {
		a.mu.Unlock()
		return
	}
	a.pending.Stop()
	a.pending = nil
	a.doc.RemoveRule(SuppressRuleID)
	a.mu.Unlock()

	a.notify(PhaseTransitionsRestored)
}

// Suppressing reports whether a no-transition window is open.
func (a *DocumentApplicator) Suppressing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

func (a *DocumentApplicator) restore(gen uint64) {
	a.mu.Lock()
	if a.pending == nil || gen != a.generation {
		a.mu.Unlock()
		return
	}
	a.pending = nil
	a.doc.RemoveRule(SuppressRuleID)
	a.mu.Unlock()

	a.notify(PhaseTransitionsRestored)
}

func (a *DocumentApplicator) write(vars models.VariableSet) {
	for _, key := range vars.Keys() {
		a.doc.SetProperty(key, vars[key])
	}
}

func (a *DocumentApplicator) notify(phases ...Phase) {
	if a.observer == nil {
		return
	}
	for _, p := range phases {
		a.observer(p)
	}
}

// Nop discards every apply.
type Nop struct{}

// Apply implements Applicator.
func (Nop) Apply(models.VariableSet) {}

// ApplyWithoutTransition implements Applicator.
func (Nop) ApplyWithoutTransition(models.VariableSet) {}
