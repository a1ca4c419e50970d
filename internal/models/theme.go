// Package models defines the core domain types for themekit.
package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RequiredVariables lists the CSS variables every theme variant must define.
var RequiredVariables = []string{
	"--background",
	"--foreground",
	"--card",
	"--primary",
	"--secondary",
	"--muted",
	"--accent",
	"--destructive",
	"--border",
	"--input",
	"--ring",
	"--radius",
	"--sidebar-background",
	"--sidebar-hover",
	"--sidebar-active",
	"--sidebar-active-foreground",
}

// Variable names the resolver overrides.
const (
	VarPrimary            = "--primary"
	VarSecondary          = "--secondary"
	VarAccent             = "--accent"
	VarRadius             = "--radius"
	VarFontSizeMultiplier = "--font-size-multiplier"
)

// ThemeDefinition is an immutable named pair of light/dark variable maps.
type ThemeDefinition struct {
	// ID is the stable key used in storage and requests.
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable display name.
	Name string `yaml:"name" json:"name"`

	// SupportsDarkMode reports whether DarkVariables is populated.
	SupportsDarkMode bool `yaml:"supportsDarkMode" json:"supportsDarkMode"`

	// LightVariables maps CSS variable names to values for the light variant.
	LightVariables map[string]string `yaml:"light" json:"lightVariables"`

	// DarkVariables maps CSS variable names to values for the dark variant.
	DarkVariables map[string]string `yaml:"dark,omitempty" json:"darkVariables,omitempty"`

	// PreviewColors holds three representative colors for pickers.
	PreviewColors []string `yaml:"preview" json:"previewColors"`
}

// Variables returns the variant map for the requested mode.
// Themes without dark support always return the light variant.
func (d ThemeDefinition) Variables(isDark bool) map[string]string {
	if isDark && d.SupportsDarkMode {
		return d.DarkVariables
	}
	return d.LightVariables
}

// Clone returns a deep copy so callers cannot mutate registry data.
func (d ThemeDefinition) Clone() ThemeDefinition {
	out := d
	out.LightVariables = copyVars(d.LightVariables)
	out.DarkVariables = copyVars(d.DarkVariables)
	if d.PreviewColors != nil {
		out.PreviewColors = append([]string(nil), d.PreviewColors...)
	}
	return out
}

// Validate checks the required-variable invariant.
func (d ThemeDefinition) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(d.ID) == "" {
		validation.AddMessage("id", "theme id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		validation.AddMessage("name", "theme name is required")
	}
	if len(d.PreviewColors) != 3 {
		validation.AddMessage("preview", fmt.Sprintf("expected 3 preview colors, got %d", len(d.PreviewColors)))
	}
	if missing := MissingVariables(d.LightVariables); len(missing) > 0 {
		validation.AddMessage("light", "missing "+strings.Join(missing, ", "))
	}
	if d.SupportsDarkMode {
		if missing := MissingVariables(d.DarkVariables); len(missing) > 0 {
			validation.AddMessage("dark", "missing "+strings.Join(missing, ", "))
		}
	} else if len(d.DarkVariables) > 0 {
		validation.AddMessage("dark", "dark variables set but supportsDarkMode is false")
	}
	return validation.Err()
}

// MissingVariables returns the required keys absent from vars.
func MissingVariables(vars map[string]string) []string {
	var missing []string
	for _, key := range RequiredVariables {
		if strings.TrimSpace(vars[key]) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// HSL is a color as hue (0-360), saturation (0-100) and lightness (0-100).
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// String renders the space-separated form used in CSS variables, e.g. "221 83% 53%".
func (c HSL) String() string {
	return fmt.Sprintf("%s %s%% %s%%", FormatNumber(c.H), FormatNumber(c.S), FormatNumber(c.L))
}

// Valid reports whether every channel is inside its range.
func (c HSL) Valid() bool {
	return c.H >= 0 && c.H <= 360 &&
		c.S >= 0 && c.S <= 100 &&
		c.L >= 0 && c.L <= 100
}

// ParseHSL accepts "h,s,l", "h s l" or the CSS variable form "h s% l%".
func ParseHSL(value string) (HSL, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) != 3 {
		return HSL{}, fmt.Errorf("invalid hsl %q: expected 3 components", value)
	}
	var parts [3]float64
	for i, field := range fields {
		n, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64)
		if err != nil {
			return HSL{}, fmt.Errorf("invalid hsl %q: %w", value, err)
		}
		parts[i] = n
	}
	c := HSL{H: parts[0], S: parts[1], L: parts[2]}
	if !c.Valid() {
		return HSL{}, fmt.Errorf("invalid hsl %q: component out of range", value)
	}
	return c, nil
}

// FormatNumber renders a float with the shortest exact representation.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Customization holds the user overrides layered on a theme. It is always
// fully populated.
type Customization struct {
	PrimaryColor   HSL     `json:"primaryColor"`
	SecondaryColor HSL     `json:"secondaryColor"`
	AccentColor    HSL     `json:"accentColor"`
	BorderRadius   float64 `json:"borderRadius"`
	FontSize       float64 `json:"fontSize"`
}

// DefaultCustomization matches the default theme's dark palette so the
// overlay is a no-op for a fresh session.
func DefaultCustomization() Customization {
	return Customization{
		PrimaryColor:   HSL{H: 217.2, S: 91.2, L: 59.8},
		SecondaryColor: HSL{H: 215, S: 20.2, L: 65.1},
		AccentColor:    HSL{H: 262.1, S: 83.3, L: 57.8},
		BorderRadius:   1.0,
		FontSize:       1.0,
	}
}

// Apply merges a patch over c and returns the result. Invalid patch values
// are ignored.
func (c Customization) Apply(p CustomizationPatch) Customization {
	if p.PrimaryColor != nil && p.PrimaryColor.Valid() {
		c.PrimaryColor = *p.PrimaryColor
	}
	if p.SecondaryColor != nil && p.SecondaryColor.Valid() {
		c.SecondaryColor = *p.SecondaryColor
	}
	if p.AccentColor != nil && p.AccentColor.Valid() {
		c.AccentColor = *p.AccentColor
	}
	if p.BorderRadius != nil && *p.BorderRadius > 0 {
		c.BorderRadius = *p.BorderRadius
	}
	if p.FontSize != nil && *p.FontSize > 0 {
		c.FontSize = *p.FontSize
	}
	return c
}

// CustomizationPatch is a partial customization update; nil fields are left
// untouched.
type CustomizationPatch struct {
	PrimaryColor   *HSL     `json:"primaryColor,omitempty"`
	SecondaryColor *HSL     `json:"secondaryColor,omitempty"`
	AccentColor    *HSL     `json:"accentColor,omitempty"`
	BorderRadius   *float64 `json:"borderRadius,omitempty"`
	FontSize       *float64 `json:"fontSize,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CustomizationPatch) IsEmpty() bool {
	return p.PrimaryColor == nil && p.SecondaryColor == nil && p.AccentColor == nil &&
		p.BorderRadius == nil && p.FontSize == nil
}

// ThemeState is the persisted selection.
type ThemeState struct {
	SelectedThemeID string        `json:"themeId"`
	IsDark          bool          `json:"isDark"`
	Customization   Customization `json:"customization"`
}

// VariableSet is a resolved, flattened CSS variable mapping.
type VariableSet map[string]string

// Keys returns the variable names in sorted order.
func (v VariableSet) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both sets hold identical entries.
func (v VariableSet) Equal(other VariableSet) bool {
	if len(v) != len(other) {
		return false
	}
	for k, value := range v {
		if got, ok := other[k]; !ok || got != value {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (v VariableSet) Clone() VariableSet {
	return VariableSet(copyVars(v))
}

func copyVars(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
