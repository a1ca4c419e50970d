package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/opencode-ai/themekit/internal/applicator"
	"github.com/opencode-ai/themekit/internal/config"
	"github.com/opencode-ai/themekit/internal/db"
	"github.com/opencode-ai/themekit/internal/events"
	"github.com/opencode-ai/themekit/internal/logging"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/opencode-ai/themekit/internal/store"
	"github.com/opencode-ai/themekit/internal/theme"
	"github.com/opencode-ai/themekit/internal/tui/styles"
)

// session bundles everything a command needs to drive the theme facade.
type session struct {
	cfg      *config.Config
	database *db.DB
	registry *registry.Registry
	store    *store.Store
	document *applicator.MemoryDocument
	applier  *applicator.DocumentApplicator
	terminal *styles.Applicator
	facade   *theme.Facade
	events   *db.EventRepository
	state    *db.StateRepository
}

func openDatabase() (*db.DB, error) {
	return openDatabaseAt(GetConfig().Storage.DatabasePath)
}

func openDatabaseAt(path string) (*db.DB, error) {
	step := startProgress("Opening database")
	database, err := db.Open(db.Config{Path: path})
	if err != nil {
		step.Fail(err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := database.MigrateUp(context.Background()); err != nil {
		step.Fail(err)
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	step.Done()
	return database, nil
}

// openSession builds and mounts a facade that applies to an in-memory
// document, as used by the non-interactive commands and the daemon.
func openSession(cfg *config.Config) (*session, error) {
	s := &session{document: applicator.NewMemoryDocument()}
	s.applier = applicator.New(s.document,
		applicator.WithTransitionDelay(cfg.Theme.TransitionDelay),
		applicator.WithLogger(logging.Component("applicator")),
	)
	if err := s.build(cfg, s.applier); err != nil {
		return nil, err
	}
	return s, nil
}

// openTerminalSession builds and mounts a facade that applies to terminal
// styles for the interactive preview.
func openTerminalSession(cfg *config.Config) (*session, error) {
	s := &session{terminal: styles.NewApplicator(nil)}
	if err := s.build(cfg, s.terminal); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) build(cfg *config.Config, app applicator.Applicator) error {
	s.cfg = cfg
	s.registry = registry.Builtin()

	var storage store.Storage
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		storage = store.NewMemoryStorage()
	case config.BackendFile:
		storage = store.NewFileStorage(cfg.Storage.Dir)
	case config.BackendSQLite:
		database, err := openDatabaseAt(cfg.Storage.DatabasePath)
		if err != nil {
			return err
		}
		s.database = database
		s.events = db.NewEventRepository(database)
		s.state = db.NewStateRepository(database)
		storage = s.state
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	storeOpts := []store.Option{
		store.WithKey(cfg.Theme.StorageKey),
		store.WithDefaultTheme(cfg.Theme.Default),
	}
	if cfg.Theme.Locked != "" {
		storeOpts = append(storeOpts, store.WithLockedTheme(cfg.Theme.Locked))
	}
	s.store = store.New(s.registry, storage, storeOpts...)

	s.facade = theme.New(s.registry, s.store, app, theme.WithLogger(logging.Component("theme")))

	if s.events != nil {
		s.facade.Subscribe(events.Recorder(s.events, cfg.Theme.StorageKey))
	}

	s.facade.Mount()
	return nil
}

// lastChange returns the most recent recorded event, or nil without an
// event log.
func (s *session) lastChange() *HistoryEntry {
	if s.events == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	event, err := s.events.Latest(ctx, s.cfg.Theme.StorageKey)
	if err != nil {
		return nil
	}
	entries := historyEntries([]*models.Event{event})
	return &entries[0]
}

// revision returns how many times the state record has been written, or 0
// without a database.
func (s *session) revision() int {
	if s.state == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	revision, err := s.state.Revision(ctx, s.cfg.Theme.StorageKey)
	if err != nil {
		return 0
	}
	return revision
}

// Close settles pending transitions and releases the database.
func (s *session) Close() {
	if s == nil {
		return
	}
	if s.applier != nil {
		s.applier.Flush()
	}
	if s.database != nil {
		s.database.Close()
	}
}

func openCurrentSession() (*session, error) {
	return openSession(GetConfig())
}
