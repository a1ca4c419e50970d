package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/themekit/internal/config"
	"github.com/opencode-ai/themekit/internal/db"
	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/tui/components"
	"github.com/opencode-ai/themekit/internal/tui/styles"
)

var (
	historyLimit int
	historySince string
	historyType  string

	pruneOlderThan string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of events")
	historyCmd.Flags().StringVar(&historySince, "since", "", "only events newer than this duration (e.g. 1h)")
	historyCmd.Flags().StringVar(&historyType, "type", "", "filter by event type (e.g. theme.changed)")

	historyPruneCmd.Flags().StringVar(&pruneOlderThan, "older-than", "720h", "remove events older than this duration")
}

// HistoryEntry is the JSON shape of one recorded theme event.
type HistoryEntry struct {
	ID        string                      `json:"id"`
	Timestamp time.Time                   `json:"timestamp"`
	Type      models.EventType            `json:"type"`
	Payload   *models.ThemeChangedPayload `json:"payload,omitempty"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded theme changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := requireSQLite(cfg); err != nil {
			return err
		}

		query, err := buildHistoryQuery(cfg.Theme.StorageKey, time.Now())
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		page, err := db.NewEventRepository(database).Query(context.Background(), query)
		if err != nil {
			return err
		}

		entries := historyEntries(page.Events)
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, entries)
		}

		if len(entries) == 0 {
			fmt.Fprintln(os.Stdout, components.EmptyHistory().Render(styles.DefaultStyles()))
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, []string{
				entry.Timestamp.Local().Format(time.DateTime),
				string(entry.Type),
				describePayload(entry.Payload),
			})
		}
		return writeTable(os.Stdout, []string{"TIME", "TYPE", "DETAILS"}, rows)
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old theme history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := requireSQLite(cfg); err != nil {
			return err
		}
		age, ok := parseEnvDuration(pruneOlderThan)
		if !ok || age <= 0 {
			return fmt.Errorf("invalid --older-than %q", pruneOlderThan)
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		removed, err := db.NewEventRepository(database).Prune(context.Background(), cfg.Theme.StorageKey, time.Now().Add(-age))
		if err != nil {
			return err
		}
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, map[string]int64{"removed": removed})
		}
		fmt.Fprintf(os.Stdout, "Removed %d event(s)\n", removed)
		return nil
	},
}

func requireSQLite(cfg *config.Config) error {
	if cfg.Storage.Backend == config.BackendSQLite {
		return nil
	}
	return &PreflightError{
		Message:  "history requires the sqlite storage backend",
		Hint:     fmt.Sprintf("storage.backend is %q", cfg.Storage.Backend),
		NextStep: "THEMEKIT_STORAGE_BACKEND=sqlite themekit history",
	}
}

func buildHistoryQuery(sessionID string, now time.Time) (db.EventQuery, error) {
	entityType := models.EntityTypeSession
	query := db.EventQuery{
		EntityType:  &entityType,
		EntityID:    &sessionID,
		Limit:       historyLimit,
		NewestFirst: true,
	}
	if historySince != "" {
		d, ok := parseEnvDuration(historySince)
		if !ok {
			return query, fmt.Errorf("invalid --since %q", historySince)
		}
		since := now.Add(-d)
		query.Since = &since
	}
	if historyType != "" {
		eventType := models.EventType(historyType)
		query.Type = &eventType
	}
	return query, nil
}

func historyEntries(events []*models.Event) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(events))
	for _, event := range events {
		entry := HistoryEntry{
			ID:        event.ID,
			Timestamp: event.Timestamp,
			Type:      event.Type,
		}
		if len(event.Payload) > 0 {
			var payload models.ThemeChangedPayload
			if err := json.Unmarshal(event.Payload, &payload); err == nil {
				entry.Payload = &payload
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func describePayload(p *models.ThemeChangedPayload) string {
	if p == nil {
		return ""
	}
	text := fmt.Sprintf("%s %s", p.ThemeID, formatMode(p.IsDark))
	if p.RequestedID != "" && p.RequestedID != p.ThemeID {
		text += fmt.Sprintf(" (requested %s)", p.RequestedID)
	}
	if p.Customization != nil {
		text += fmt.Sprintf(" primary=%s radius=%s", p.Customization.PrimaryColor, formatScale(p.Customization.BorderRadius))
	}
	return text
}
