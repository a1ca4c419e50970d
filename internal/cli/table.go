package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/tui/styles"
)

const tablePadding = 2

func writeTable(out io.Writer, headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(out, 0, 0, tablePadding, ' ', tabwriter.StripEscape)
	if len(headers) > 0 {
		fmt.Fprintln(writer, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}
	return writer.Flush()
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatSwatch(c models.HSL) string {
	hex := styles.HexFromHSL(c)
	text := fmt.Sprintf("%s  %s", c.String(), hex)
	if !colorEnabled() {
		return text
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("   ") + " " + text
}
