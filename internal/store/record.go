package store

import (
	"encoding/json"
	"fmt"

	"github.com/opencode-ai/themekit/internal/models"
)

// RecordVersion is the schema version written to durable storage.
const RecordVersion = 1

// DefaultKey is the namespaced storage key for the theme record.
const DefaultKey = "themekit:theme-config"

type record struct {
	Version       *int                 `json:"version,omitempty"`
	ThemeID       string               `json:"themeId"`
	IsDark        *bool                `json:"isDark"`
	Customization *customizationRecord `json:"customization"`
}

type customizationRecord struct {
	PrimaryColor   *hslRecord `json:"primaryColor"`
	SecondaryColor *hslRecord `json:"secondaryColor"`
	AccentColor    *hslRecord `json:"accentColor"`
	BorderRadius   *float64   `json:"borderRadius"`
	FontSize       *float64   `json:"fontSize"`
}

type hslRecord struct {
	H *float64 `json:"h"`
	S *float64 `json:"s"`
	L *float64 `json:"l"`
}

type fallbackReason string

const (
	reasonMissing         fallbackReason = "missing"
	reasonUnreadable      fallbackReason = "unreadable"
	reasonMalformed       fallbackReason = "malformed"
	reasonVersionMismatch fallbackReason = "version_mismatch"
	reasonThemeNotAllowed fallbackReason = "theme_not_allowed"
)

// loadResult carries either a decoded state or the reason it was rejected.
// The rejected branch never leaves this package; callers fall back to
// defaults.
type loadResult struct {
	state  models.ThemeState
	ok     bool
	reason fallbackReason
	err    error
}

func rejected(reason fallbackReason, err error) loadResult {
	return loadResult{reason: reason, err: err}
}

func encodeRecord(state models.ThemeState) ([]byte, error) {
	isDark := state.IsDark
	version := RecordVersion
	c := state.Customization
	rec := record{
		Version: &version,
		ThemeID: state.SelectedThemeID,
		IsDark:  &isDark,
		Customization: &customizationRecord{
			PrimaryColor:   toHSLRecord(c.PrimaryColor),
			SecondaryColor: toHSLRecord(c.SecondaryColor),
			AccentColor:    toHSLRecord(c.AccentColor),
			BorderRadius:   &c.BorderRadius,
			FontSize:       &c.FontSize,
		},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal theme record: %w", err)
	}
	return data, nil
}

// decodeRecord parses data and fills any missing or out-of-range
// customization field from defaults. allowed reports whether a theme id may
// be restored.
func decodeRecord(data []byte, allowed func(string) bool, defaults models.ThemeState) loadResult {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return rejected(reasonMalformed, err)
	}
	// Records without a version key are the original unversioned shape,
	// which version 1 matches field for field.
	if rec.Version != nil && *rec.Version != RecordVersion {
		return rejected(reasonVersionMismatch, fmt.Errorf("record version %d, want %d", *rec.Version, RecordVersion))
	}
	if !allowed(rec.ThemeID) {
		return rejected(reasonThemeNotAllowed, fmt.Errorf("theme %q not allowed", rec.ThemeID))
	}

	state := defaults
	state.SelectedThemeID = rec.ThemeID
	if rec.IsDark != nil {
		state.IsDark = *rec.IsDark
	}
	if rec.Customization != nil {
		state.Customization = fillCustomization(*rec.Customization, defaults.Customization)
	}
	return loadResult{state: state, ok: true}
}

func fillCustomization(rec customizationRecord, defaults models.Customization) models.Customization {
	out := defaults
	out.PrimaryColor = rec.PrimaryColor.orDefault(defaults.PrimaryColor)
	out.SecondaryColor = rec.SecondaryColor.orDefault(defaults.SecondaryColor)
	out.AccentColor = rec.AccentColor.orDefault(defaults.AccentColor)
	if rec.BorderRadius != nil && *rec.BorderRadius > 0 {
		out.BorderRadius = *rec.BorderRadius
	}
	if rec.FontSize != nil && *rec.FontSize > 0 {
		out.FontSize = *rec.FontSize
	}
	return out
}

func (r *hslRecord) orDefault(fallback models.HSL) models.HSL {
	if r == nil || r.H == nil || r.S == nil || r.L == nil {
		return fallback
	}
	c := models.HSL{H: *r.H, S: *r.S, L: *r.L}
	if !c.Valid() {
		return fallback
	}
	return c
}

func toHSLRecord(c models.HSL) *hslRecord {
	h, s, l := c.H, c.S, c.L
	return &hslRecord{H: &h, S: &s, L: &l}
}
