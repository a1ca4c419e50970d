package styles

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/opencode-ai/themekit/internal/models"
)

// HexFromHSL converts an HSL triple (degrees, percent, percent) to #rrggbb.
func HexFromHSL(c models.HSL) string {
	return colorful.Hsl(c.H, c.S/100, c.L/100).Clamped().Hex()
}

// HexFromVariable converts a CSS variable value such as "217.2 91.2% 59.8%"
// to #rrggbb. ok is false when the value is not an HSL triple.
func HexFromVariable(value string) (string, bool) {
	hsl, err := models.ParseHSL(value)
	if err != nil {
		return "", false
	}
	return HexFromHSL(hsl), true
}
