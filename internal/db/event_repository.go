package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opencode-ai/themekit/internal/models"
)

// Event repository errors.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

const defaultEventLimit = 100

const eventColumns = `rowid, id, timestamp, type, entity_type, entity_id, payload_json, metadata_json`

// EventRepository persists the theme change history.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventQuery filters the history. Results are in insertion order unless
// NewestFirst is set.
type EventQuery struct {
	Type        *models.EventType
	EntityType  *models.EntityType
	EntityID    *string
	Since       *time.Time // inclusive
	Until       *time.Time // exclusive
	Cursor      string     // NextCursor from a previous page
	Limit       int
	NewestFirst bool
}

// EventPage is one page of query results.
type EventPage struct {
	Events     []*models.Event
	NextCursor string
}

// Create records an event, assigning an id and timestamp when unset.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event == nil {
		return ErrInvalidEvent
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC().Truncate(time.Microsecond)

	var payload *string
	if len(event.Payload) > 0 {
		s := string(event.Payload)
		payload = &s
	}

	var metadata *string
	if len(event.Metadata) > 0 {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		s := string(data)
		metadata = &s
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, timestamp, type, entity_type, entity_id, payload_json, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.Timestamp.Format(timestampLayout),
		string(event.Type),
		string(event.EntityType),
		event.EntityID,
		payload,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Get retrieves an event by id.
func (r *EventRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, _, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return event, err
}

// Latest returns the most recent event for a session.
func (r *EventRepository) Latest(ctx context.Context, sessionID string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY rowid DESC LIMIT 1
	`, string(models.EntityTypeSession), sessionID)
	event, _, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return event, err
}

// Query retrieves events matching q, one page at a time.
func (r *EventRepository) Query(ctx context.Context, q EventQuery) (*EventPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}

	var where []string
	var args []any
	if q.Type != nil {
		where = append(where, `type = ?`)
		args = append(args, string(*q.Type))
	}
	if q.EntityType != nil {
		where = append(where, `entity_type = ?`)
		args = append(args, string(*q.EntityType))
	}
	if q.EntityID != nil {
		where = append(where, `entity_id = ?`)
		args = append(args, *q.EntityID)
	}
	if q.Since != nil {
		where = append(where, `timestamp >= ?`)
		args = append(args, q.Since.UTC().Format(timestampLayout))
	}
	if q.Until != nil {
		where = append(where, `timestamp < ?`)
		args = append(args, q.Until.UTC().Format(timestampLayout))
	}

	order := "ASC"
	if q.NewestFirst {
		order = "DESC"
	}
	if q.Cursor != "" {
		seq, err := strconv.ParseInt(q.Cursor, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q", q.Cursor)
		}
		if q.NewestFirst {
			where = append(where, `rowid < ?`)
		} else {
			where = append(where, `rowid > ?`)
		}
		args = append(args, seq)
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY rowid ` + order + ` LIMIT ?`
	args = append(args, limit+1)

	events, seqs, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	page := &EventPage{Events: events}
	if len(events) > limit {
		page.Events = events[:limit]
		page.NextCursor = strconv.FormatInt(seqs[limit-1], 10)
	}
	return page, nil
}

// Prune deletes a session's events recorded before cutoff and returns how
// many were removed.
func (r *EventRepository) Prune(ctx context.Context, sessionID string, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM events
		WHERE entity_type = ? AND entity_id = ? AND timestamp < ?
	`, string(models.EntityTypeSession), sessionID, cutoff.UTC().Format(timestampLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned events: %w", err)
	}
	if removed > 0 {
		r.db.logger.Debug().Int64("removed", removed).Str("session_id", sessionID).Msg("pruned theme events")
	}
	return removed, nil
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]*models.Event, []int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	var seqs []int64
	for rows.Next() {
		event, seq, err := r.scan(rows)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, event)
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, seqs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EventRepository) scan(row rowScanner) (*models.Event, int64, error) {
	var (
		event                     models.Event
		seq                       int64
		timestamp, typ, entityTyp string
		payload, metadata         sql.NullString
	)
	err := row.Scan(&seq, &event.ID, &timestamp, &typ, &entityTyp, &event.EntityID, &payload, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, err
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Type = models.EventType(typ)
	event.EntityType = models.EntityType(entityTyp)
	if t, err := time.Parse(timestampLayout, timestamp); err == nil {
		event.Timestamp = t
	}
	if payload.Valid {
		event.Payload = json.RawMessage(payload.String)
	}
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &event.Metadata); err != nil {
			r.db.logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to parse event metadata")
		}
	}
	return &event, seq, nil
}
