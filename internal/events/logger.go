// Package events records theme changes to the event log.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opencode-ai/themekit/internal/logging"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/store"
	"github.com/opencode-ai/themekit/internal/theme"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// LogThemeEvent records a facade change event for a session.
func LogThemeEvent(ctx context.Context, repo Repository, sessionID string, change theme.ChangeEvent) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	eventType, ok := eventTypeFor(change)
	if !ok {
		return nil
	}

	payload := models.ThemeChangedPayload{
		Action:      string(change.Action),
		ThemeID:     change.ThemeID,
		IsDark:      change.IsDark,
		RequestedID: change.RequestedThemeID,
	}
	if change.Action == theme.ActionCustomize {
		c := change.Customization
		payload.Customization = &c
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal theme payload: %w", err)
	}

	event := &models.Event{
		Type:       eventType,
		EntityType: models.EntityTypeSession,
		EntityID:   sessionID,
		Payload:    data,
	}

	return repo.Create(ctx, event)
}

func eventTypeFor(change theme.ChangeEvent) (models.EventType, bool) {
	switch change.Action {
	case theme.ActionSetTheme:
		switch change.Outcome {
		case store.ThemeLockIgnored:
			return models.EventTypeThemeLockIgnored, true
		case store.ThemeUnchanged:
			return "", false
		default:
			return models.EventTypeThemeChanged, true
		}
	case theme.ActionToggleDarkMode, theme.ActionSetDarkMode:
		return models.EventTypeDarkModeChanged, true
	case theme.ActionCustomize:
		return models.EventTypeCustomizationUpdate, true
	case theme.ActionResetCustomization:
		return models.EventTypeCustomizationReset, true
	case theme.ActionReset:
		return models.EventTypeThemeReset, true
	default:
		return "", false
	}
}

// Recorder returns a facade listener that records every change. Write
// failures are logged and dropped so they never reach facade callers.
func Recorder(repo Repository, sessionID string) func(theme.ChangeEvent) {
	logger := logging.Component("events")
	return func(change theme.ChangeEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := LogThemeEvent(ctx, repo, sessionID, change); err != nil {
			logger.Warn().Err(err).Str("action", string(change.Action)).Msg("failed to record theme event")
		}
	}
}
