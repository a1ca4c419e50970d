package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes recorded theme events.
type EventType string

const (
	EventTypeThemeChanged        EventType = "theme.changed"
	EventTypeDarkModeChanged     EventType = "theme.dark_mode_changed"
	EventTypeCustomizationUpdate EventType = "theme.customized"
	EventTypeCustomizationReset  EventType = "theme.customization_reset"
	EventTypeThemeReset          EventType = "theme.reset"
	EventTypeThemeLockIgnored    EventType = "theme.lock_ignored"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeSession EntityType = "session"
	EntityTypeSystem  EntityType = "system"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// ThemeChangedPayload is the payload for every theme.* event.
type ThemeChangedPayload struct {
	Action        string         `json:"action"`
	ThemeID       string         `json:"theme_id"`
	IsDark        bool           `json:"is_dark"`
	Customization *Customization `json:"customization,omitempty"`
	RequestedID   string         `json:"requested_id,omitempty"`
}
