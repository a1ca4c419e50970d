package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/store"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

func colorEnabled() bool {
	if noColor || IsJSONOutput() || IsJSONLOutput() {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return hasTTY()
}

func colorize(text, color string) string {
	if !colorEnabled() || color == "" {
		return text
	}
	return color + text + colorReset
}

func formatOutcome(outcome store.SetThemeOutcome) string {
	label, color := outcomeLabel(outcome)
	return colorize(formatStatusLabel(label, outcome.String()), color)
}

func outcomeLabel(outcome store.SetThemeOutcome) (string, string) {
	switch outcome {
	case store.ThemeApplied:
		return "OK", colorGreen
	case store.ThemeUnchanged:
		return "OK", colorCyan
	case store.ThemeFellBack:
		return "WARN", colorYellow
	case store.ThemeLockIgnored:
		return "LOCKED", colorMagenta
	default:
		return "WARN", colorYellow
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}

func formatMode(isDark bool) string {
	if isDark {
		return "dark"
	}
	return "light"
}

func formatScale(v float64) string {
	return models.FormatNumber(v) + "x"
}
