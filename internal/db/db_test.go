package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/opencode-ai/themekit/internal/store"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := database.MigrateUp(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()

	applied, err := database.MigrateUp(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 migrations, got %d", applied)
	}

	applied, err = database.MigrateUp(ctx)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected no pending migrations, got %d", applied)
	}

	version, err := database.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected schema version 2, got %d", version)
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "themekit.db")
	database, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	if database.Path() != path {
		t.Fatalf("unexpected path %q", database.Path())
	}
	if _, err := database.MigrateUp(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestStateRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepository(openTestDB(t))

	if _, err := repo.Load("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Save("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save("k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := repo.Load("k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"a":2}` {
		t.Fatalf("unexpected data %q", data)
	}

	revision, err := repo.Revision(ctx, "k")
	if err != nil {
		t.Fatalf("revision: %v", err)
	}
	if revision != 2 {
		t.Fatalf("expected revision 2, got %d", revision)
	}

	if err := repo.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.Remove("k"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, err := repo.Load("k"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestStateRepositoryBacksStore(t *testing.T) {
	database := openTestDB(t)
	reg := registry.Builtin()

	first := store.New(reg, NewStateRepository(database))
	first.Rehydrate()
	first.SetTheme("forest")
	first.SetIsDark(false)

	second := store.New(reg, NewStateRepository(database))
	second.Rehydrate()
	state := second.State()
	if state.SelectedThemeID != "forest" {
		t.Fatalf("expected forest, got %q", state.SelectedThemeID)
	}
	if state.IsDark {
		t.Fatal("expected light mode to persist")
	}
}

func sessionEvents(t *testing.T, repo *EventRepository, sessionID string) []*models.Event {
	t.Helper()
	entityType := models.EntityTypeSession
	page, err := repo.Query(context.Background(), EventQuery{EntityType: &entityType, EntityID: &sessionID})
	if err != nil {
		t.Fatalf("query %s: %v", sessionID, err)
	}
	return page.Events
}

func TestEventRepositoryCreateAndQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, eventType := range []models.EventType{
		models.EventTypeThemeChanged,
		models.EventTypeDarkModeChanged,
		models.EventTypeThemeChanged,
	} {
		event := &models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Type:       eventType,
			EntityType: models.EntityTypeSession,
			EntityID:   "session-1",
			Payload:    []byte(`{"themeId":"ocean"}`),
		}
		if err := repo.Create(ctx, event); err != nil {
			t.Fatalf("create: %v", err)
		}
		if event.ID == "" {
			t.Fatal("expected ID to be assigned")
		}
	}

	themeChanged := models.EventTypeThemeChanged
	page, err := repo.Query(ctx, EventQuery{Type: &themeChanged})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page.Events))
	}

	page, err = repo.Query(ctx, EventQuery{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page.Events) != 2 || page.NextCursor == "" {
		t.Fatalf("expected a paged result, got %d events cursor=%q", len(page.Events), page.NextCursor)
	}
	rest, err := repo.Query(ctx, EventQuery{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("query next page: %v", err)
	}
	if len(rest.Events) != 1 || rest.NextCursor != "" {
		t.Fatalf("expected final page of 1, got %d cursor=%q", len(rest.Events), rest.NextCursor)
	}

	events := sessionEvents(t, repo, "session-1")
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	got, err := repo.Get(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Payload) != `{"themeId":"ocean"}` {
		t.Fatalf("unexpected payload %s", got.Payload)
	}

	if _, err := repo.Get(ctx, "nope"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEventRepositoryCreateValidates(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))
	if err := repo.Create(context.Background(), &models.Event{}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if err := repo.Create(context.Background(), nil); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent for nil, got %v", err)
	}
}

func TestEventRepositoryNewestFirstAndLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	if _, err := repo.Latest(ctx, "session-1"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}

	// Identical timestamps still come back in insertion order.
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		event := &models.Event{
			Timestamp:  stamp,
			Type:       models.EventTypeDarkModeChanged,
			EntityType: models.EntityTypeSession,
			EntityID:   "session-1",
		}
		if err := repo.Create(ctx, event); err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, event.ID)
	}

	latest, err := repo.Latest(ctx, "session-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != ids[2] {
		t.Fatalf("expected latest %s, got %s", ids[2], latest.ID)
	}

	page, err := repo.Query(ctx, EventQuery{NewestFirst: true, Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page.Events) != 2 || page.Events[0].ID != ids[2] || page.Events[1].ID != ids[1] {
		t.Fatalf("unexpected newest-first page: %+v", page.Events)
	}
	rest, err := repo.Query(ctx, EventQuery{NewestFirst: true, Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("query next page: %v", err)
	}
	if len(rest.Events) != 1 || rest.Events[0].ID != ids[0] {
		t.Fatalf("unexpected final page: %+v", rest.Events)
	}

	if _, err := repo.Query(ctx, EventQuery{Cursor: "abc"}); err == nil {
		t.Fatal("expected invalid cursor error")
	}
}

func TestEventRepositoryPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, session := range []string{"session-1", "session-1", "session-1", "session-2"} {
		event := &models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			Type:       models.EventTypeThemeChanged,
			EntityType: models.EntityTypeSession,
			EntityID:   session,
		}
		if err := repo.Create(ctx, event); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	removed, err := repo.Prune(ctx, "session-1", base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	remaining := sessionEvents(t, repo, "session-1")
	if len(remaining) != 1 || !remaining[0].Timestamp.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("unexpected remaining events: %+v", remaining)
	}
	other := sessionEvents(t, repo, "session-2")
	if len(other) != 1 {
		t.Fatalf("expected other session untouched, got %d", len(other))
	}
}
