// Package store holds the persisted theme selection and rehydrates it from
// durable storage.
package store

import (
	"errors"
	"sync"

	"github.com/opencode-ai/themekit/internal/logging"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/rs/zerolog"
)

// SetThemeOutcome describes what SetTheme did.
type SetThemeOutcome int

const (
	// ThemeApplied means the selection changed to the requested id.
	ThemeApplied SetThemeOutcome = iota
	// ThemeUnchanged means the requested id was already selected.
	ThemeUnchanged
	// ThemeFellBack means the id was unknown and the default was selected.
	ThemeFellBack
	// ThemeLockIgnored means a theme lock rejected the request.
	ThemeLockIgnored
)

func (o SetThemeOutcome) String() string {
	switch o {
	case ThemeApplied:
		return "applied"
	case ThemeUnchanged:
		return "unchanged"
	case ThemeFellBack:
		return "fell_back"
	case ThemeLockIgnored:
		return "lock_ignored"
	default:
		return "unknown"
	}
}

// Store owns the selected theme, dark flag and customization. It reads
// durable storage once, lazily, and writes the full record synchronously on
// every mutation. Storage failures degrade to defaults and are never
// returned.
type Store struct {
	registry  *registry.Registry
	storage   Storage
	key       string
	locked    string
	defaultID string
	logger    zerolog.Logger

	hydrateOnce sync.Once
	hydratedCh  chan struct{}

	mu       sync.RWMutex
	state    models.ThemeState
	hydrated bool
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLockedTheme restricts the store to a single theme id.
func WithLockedTheme(id string) Option {
	return func(s *Store) {
		s.locked = id
	}
}

// WithDefaultTheme sets the theme used for fresh or rejected state.
func WithDefaultTheme(id string) Option {
	return func(s *Store) {
		s.defaultID = id
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store. A nil storage keeps state in memory only.
func New(reg *registry.Registry, storage Storage, opts ...Option) *Store {
	if reg == nil {
		reg = registry.Builtin()
	}
	if storage == nil {
		storage = NewMemoryStorage()
	}

	s := &Store{
		registry:   reg,
		storage:    storage,
		key:        DefaultKey,
		logger:     logging.Component("store"),
		hydratedCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.locked != "" && !reg.Has(s.locked) {
		s.logger.Warn().Str("theme_id", s.locked).Msg("locked theme is not registered; locking to default")
		s.locked = reg.DefaultID()
	}
	switch {
	case s.locked != "":
		s.defaultID = s.locked
	case !reg.Has(s.defaultID):
		s.defaultID = reg.DefaultID()
	}

	s.state = s.defaults()
	return s
}

func (s *Store) defaults() models.ThemeState {
	return models.ThemeState{
		SelectedThemeID: s.defaultID,
		IsDark:          true,
		Customization:   models.DefaultCustomization(),
	}
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// LockedTheme returns the locked theme id, or "" when unlocked.
func (s *Store) LockedTheme() string {
	return s.locked
}

// Rehydrate reads durable storage if it has not been read yet. It is
// synchronous and safe to call repeatedly.
func (s *Store) Rehydrate() {
	s.hydrateOnce.Do(s.rehydrate)
}

func (s *Store) rehydrate() {
	result := s.load()

	s.mu.Lock()
	if result.ok {
		s.state = result.state
	} else {
		s.state = s.defaults()
	}
	s.hydrated = true
	s.mu.Unlock()

	if result.ok {
		s.logger.Debug().
			Str("theme_id", result.state.SelectedThemeID).
			Bool("is_dark", result.state.IsDark).
			Msg("rehydrated theme state")
	} else {
		s.logger.Debug().
			Str("reason", string(result.reason)).
			AnErr("cause", result.err).
			Msg("using default theme state")
	}

	close(s.hydratedCh)
}

func (s *Store) load() loadResult {
	data, err := s.storage.Load(s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return rejected(reasonMissing, nil)
		}
		return rejected(reasonUnreadable, err)
	}
	return decodeRecord(data, s.allowed, s.defaults())
}

func (s *Store) allowed(id string) bool {
	if s.locked != "" {
		return id == s.locked
	}
	return s.registry.Has(id)
}

// HasHydrated reports whether rehydration has completed. Once true it stays
// true for the life of the store.
func (s *Store) HasHydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Hydrated returns a channel closed when rehydration completes.
func (s *Store) Hydrated() <-chan struct{} {
	return s.hydratedCh
}

// State returns a copy of the current state, rehydrating first if needed.
func (s *Store) State() models.ThemeState {
	s.Rehydrate()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetTheme selects a theme. Locked stores ignore other ids; unknown ids
// select the default theme.
func (s *Store) SetTheme(id string) SetThemeOutcome {
	s.Rehydrate()

	if s.locked != "" && id != s.locked {
		s.logger.Debug().Str("requested", id).Str("locked", s.locked).Msg("theme lock ignored set")
		return ThemeLockIgnored
	}

	outcome := ThemeApplied
	if !s.registry.Has(id) {
		outcome = ThemeFellBack
		id = s.defaultID
	}

	s.mutate(func(state *models.ThemeState) {
		if state.SelectedThemeID == id && outcome == ThemeApplied {
			outcome = ThemeUnchanged
		}
		state.SelectedThemeID = id
	})
	return outcome
}

// SetIsDark sets the dark flag.
func (s *Store) SetIsDark(isDark bool) {
	s.Rehydrate()
	s.mutate(func(state *models.ThemeState) {
		state.IsDark = isDark
	})
}

// ToggleDarkMode flips the dark flag and returns the new value.
func (s *Store) ToggleDarkMode() bool {
	s.Rehydrate()
	var isDark bool
	s.mutate(func(state *models.ThemeState) {
		state.IsDark = !state.IsDark
		isDark = state.IsDark
	})
	return isDark
}

// UpdateCustomization merges patch into the current customization.
func (s *Store) UpdateCustomization(patch models.CustomizationPatch) models.Customization {
	s.Rehydrate()
	var out models.Customization
	s.mutate(func(state *models.ThemeState) {
		state.Customization = state.Customization.Apply(patch)
		out = state.Customization
	})
	return out
}

// ResetCustomization restores default customization.
func (s *Store) ResetCustomization() {
	s.Rehydrate()
	s.mutate(func(state *models.ThemeState) {
		state.Customization = models.DefaultCustomization()
	})
}

// Reset restores defaults and clears durable storage. The hydration flag is
// left untouched.
func (s *Store) Reset() {
	s.Rehydrate()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.defaults()
	if err := s.storage.Remove(s.key); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("failed to clear theme record")
	}
}

func (s *Store) mutate(fn func(*models.ThemeState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	s.persist(s.state)
}

func (s *Store) persist(state models.ThemeState) {
	data, err := encodeRecord(state)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode theme record")
		return
	}
	if err := s.storage.Save(s.key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("failed to persist theme record")
	}
}
