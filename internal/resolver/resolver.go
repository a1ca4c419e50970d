// Package resolver merges a theme variant with user customization into the
// final CSS variable set.
package resolver

import (
	"strconv"
	"strings"

	"github.com/opencode-ai/themekit/internal/models"
)

// Resolve computes the variable set for a theme, mode and customization.
//
// Overlay order is fixed: base variant, color overrides, radius scale, font
// multiplier. Inputs are expected to be defaulted already; Resolve has no
// error path and no hidden state.
func Resolve(def models.ThemeDefinition, isDark bool, c models.Customization) models.VariableSet {
	base := def.Variables(isDark)

	out := make(models.VariableSet, len(base)+1)
	for k, v := range base {
		out[k] = v
	}

	out[models.VarPrimary] = c.PrimaryColor.String()
	out[models.VarSecondary] = c.SecondaryColor.String()
	out[models.VarAccent] = c.AccentColor.String()

	if value, unit, ok := ParseLength(base[models.VarRadius]); ok {
		out[models.VarRadius] = FormatLength(value*c.BorderRadius, unit)
	}

	out[models.VarFontSizeMultiplier] = models.FormatNumber(c.FontSize)

	return out
}

// ParseLength splits a CSS length such as "0.5rem" into 0.5 and "rem".
func ParseLength(value string) (float64, string, bool) {
	value = strings.TrimSpace(value)
	end := 0
	for end < len(value) {
		ch := value[end]
		if (ch >= '0' && ch <= '9') || ch == '.' || (end == 0 && (ch == '-' || ch == '+')) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, "", false
	}
	n, err := strconv.ParseFloat(value[:end], 64)
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(value[end:]), true
}

// FormatLength joins a number and unit, e.g. 1 and "rem" become "1rem".
func FormatLength(value float64, unit string) string {
	// Trim float noise such as 0.30000000000000004.
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(value, 'f', 6, 64), 64)
	if err != nil {
		rounded = value
	}
	return models.FormatNumber(rounded) + unit
}
