package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/themekit/internal/models"
	"github.com/opencode-ai/themekit/internal/registry"
	"github.com/opencode-ai/themekit/internal/store"
	"github.com/opencode-ai/themekit/internal/theme"
)

var (
	customizePrimary   string
	customizeSecondary string
	customizeAccent    string
	customizeRadius    float64
	customizeFontSize  float64

	resetCustomizationOnly bool

	toggleMode string
)

func init() {
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(customizeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(cssCmd)

	customizeCmd.Flags().StringVar(&customizePrimary, "primary", "", "primary color as \"h,s,l\"")
	customizeCmd.Flags().StringVar(&customizeSecondary, "secondary", "", "secondary color as \"h,s,l\"")
	customizeCmd.Flags().StringVar(&customizeAccent, "accent", "", "accent color as \"h,s,l\"")
	customizeCmd.Flags().Float64Var(&customizeRadius, "radius", 0, "border radius multiplier")
	customizeCmd.Flags().Float64Var(&customizeFontSize, "font-size", 0, "font size multiplier")

	toggleCmd.Flags().StringVar(&toggleMode, "mode", "", "set the mode explicitly (dark or light) instead of flipping it")

	resetCmd.Flags().BoolVar(&resetCustomizationOnly, "customization-only", false, "only reset customization")
}

// ThemeSummary is the JSON shape of a registered theme.
type ThemeSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	SupportsDarkMode bool   `json:"supportsDarkMode"`
	Default          bool   `json:"default"`
	Locked           bool   `json:"locked"`
	Selected         bool   `json:"selected"`
}

// StateOutput is the JSON shape of the current theme state.
type StateOutput struct {
	ThemeID       string               `json:"themeId"`
	ThemeName     string               `json:"themeName"`
	IsDark        bool                 `json:"isDark"`
	LockedTheme   string               `json:"lockedTheme,omitempty"`
	Customization models.Customization `json:"customization"`
	Variables     models.VariableSet   `json:"variables,omitempty"`
	LastChange    *HistoryEntry        `json:"lastChange,omitempty"`
	Revision      int                  `json:"revision,omitempty"`
}

// SetThemeOutput reports the result of `themekit set`.
type SetThemeOutput struct {
	Requested string `json:"requested"`
	ThemeID   string `json:"themeId"`
	Outcome   string `json:"outcome"`
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCurrentSession()
		if err != nil {
			return err
		}
		defer s.Close()

		summaries := summarizeThemes(s.registry, s.facade)
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, summaries)
		}
		return writeThemesTable(os.Stdout, summaries)
	},
}

func summarizeThemes(reg *registry.Registry, f *theme.Facade) []ThemeSummary {
	current := f.Theme()
	locked := f.LockedTheme()
	themes := f.Themes()
	summaries := make([]ThemeSummary, 0, len(themes))
	for _, def := range themes {
		summaries = append(summaries, ThemeSummary{
			ID:               def.ID,
			Name:             def.Name,
			SupportsDarkMode: def.SupportsDarkMode,
			Default:          def.ID == reg.DefaultID(),
			Locked:           def.ID == locked,
			Selected:         def.ID == current,
		})
	}
	return summaries
}

func writeThemesTable(out io.Writer, summaries []ThemeSummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		marker := ""
		if summary.Selected {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			summary.ID,
			summary.Name,
			formatYesNo(summary.SupportsDarkMode),
			formatYesNo(summary.Locked),
		})
	}
	return writeTable(out, []string{"", "ID", "NAME", "DARK", "LOCKED"}, rows)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current theme state",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCurrentSession()
		if err != nil {
			return err
		}
		defer s.Close()

		output := stateOutput(s.facade, IsJSONOutput() || IsJSONLOutput())
		output.LastChange = s.lastChange()
		output.Revision = s.revision()
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, output)
		}
		return writeState(os.Stdout, output)
	},
}

func stateOutput(f *theme.Facade, withVariables bool) StateOutput {
	state := f.State()
	output := StateOutput{
		ThemeID:       state.SelectedThemeID,
		ThemeName:     f.Definition().Name,
		IsDark:        state.IsDark,
		LockedTheme:   f.LockedTheme(),
		Customization: state.Customization,
	}
	if withVariables {
		output.Variables = f.Variables()
	}
	return output
}

func writeState(out io.Writer, output StateOutput) error {
	c := output.Customization
	rows := [][]string{
		{"Theme:", fmt.Sprintf("%s (%s)", output.ThemeName, output.ThemeID)},
		{"Mode:", formatMode(output.IsDark)},
		{"Primary:", formatSwatch(c.PrimaryColor)},
		{"Secondary:", formatSwatch(c.SecondaryColor)},
		{"Accent:", formatSwatch(c.AccentColor)},
		{"Radius:", formatScale(c.BorderRadius)},
		{"Font size:", formatScale(c.FontSize)},
	}
	if output.LockedTheme != "" {
		rows = append(rows, []string{"Locked:", output.LockedTheme})
	}
	if output.Revision > 0 {
		rows = append(rows, []string{"Revision:", strconv.Itoa(output.Revision)})
	}
	if last := output.LastChange; last != nil {
		rows = append(rows, []string{"Last change:", fmt.Sprintf("%s %s", last.Timestamp.Local().Format(time.DateTime), last.Type)})
	}
	return writeTable(out, nil, rows)
}

var setCmd = &cobra.Command{
	Use:   "set <theme-id>",
	Short: "Select a theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCurrentSession()
		if err != nil {
			return err
		}
		defer s.Close()

		output := setTheme(s.facade, args[0])
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, output)
		}
		fmt.Fprintf(os.Stdout, "%s %s\n", formatOutcomeLabel(output.Outcome), output.ThemeID)
		return nil
	},
}

// setTheme selects id and reports what the store did with the request.
func setTheme(f *theme.Facade, id string) SetThemeOutput {
	outcome := f.SelectTheme(id)
	return SetThemeOutput{
		Requested: id,
		ThemeID:   f.Theme(),
		Outcome:   outcome.String(),
	}
}

func formatOutcomeLabel(outcome string) string {
	for _, o := range []store.SetThemeOutcome{store.ThemeApplied, store.ThemeUnchanged, store.ThemeFellBack, store.ThemeLockIgnored} {
		if o.String() == outcome {
			return formatOutcome(o)
		}
	}
	return outcome
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle dark mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		isDark, explicit, err := parseMode(toggleMode)
		if err != nil {
			return err
		}

		s, err := openCurrentSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if explicit {
			s.facade.SetDarkMode(isDark)
		} else {
			s.facade.ToggleDarkMode()
		}
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, map[string]any{"isDark": s.facade.IsDark()})
		}
		fmt.Fprintf(os.Stdout, "Mode: %s\n", formatMode(s.facade.IsDark()))
		return nil
	},
}

// parseMode reads --mode. explicit is false when the flag is empty.
func parseMode(mode string) (isDark, explicit bool, err error) {
	switch mode {
	case "":
		return false, false, nil
	case "dark":
		return true, true, nil
	case "light":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("invalid --mode %q: expected dark or light", mode)
	}
}

var customizeCmd = &cobra.Command{
	Use:   "customize",
	Short: "Update theme customization",
	Example: `  themekit customize --primary "217.2,91.2,59.8"
  themekit customize --radius 1.5 --font-size 1.1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := buildCustomizationPatch(cmd)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return &PreflightError{
				Message:  "no customization given",
				Hint:     "Pass at least one of --primary, --secondary, --accent, --radius, --font-size",
				NextStep: "themekit customize --help",
			}
		}

		s, err := openCurrentSession()
		if err != nil {
			return err
		}
		defer s.Close()

		s.facade.UpdateCustomization(patch)
		output := stateOutput(s.facade, false)
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, output)
		}
		return writeState(os.Stdout, output)
	},
}

func buildCustomizationPatch(cmd *cobra.Command) (models.CustomizationPatch, error) {
	var patch models.CustomizationPatch
	colors := []struct {
		flag  string
		value string
		dst   **models.HSL
	}{
		{"primary", customizePrimary, &patch.PrimaryColor},
		{"secondary", customizeSecondary, &patch.SecondaryColor},
		{"accent", customizeAccent, &patch.AccentColor},
	}
	for _, c := range colors {
		if !cmd.Flags().Changed(c.flag) {
			continue
		}
		hsl, err := models.ParseHSL(c.value)
		if err != nil {
			return patch, fmt.Errorf("invalid --%s: %w", c.flag, err)
		}
		*c.dst = &hsl
	}

	if cmd.Flags().Changed("radius") {
		if customizeRadius <= 0 {
			return patch, fmt.Errorf("invalid --radius: must be positive")
		}
		radius := customizeRadius
		patch.BorderRadius = &radius
	}
	if cmd.Flags().Changed("font-size") {
		if customizeFontSize <= 0 {
			return patch, fmt.Errorf("invalid --font-size: must be positive")
		}
		size := customizeFontSize
		patch.FontSize = &size
	}
	return patch, nil
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset theme state to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCurrentSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if resetCustomizationOnly {
			s.facade.ResetCustomization()
		} else {
			s.facade.Reset()
		}

		output := stateOutput(s.facade, false)
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, output)
		}
		return writeState(os.Stdout, output)
	},
}

var cssCmd = &cobra.Command{
	Use:   "css",
	Short: "Print the resolved CSS variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCurrentSession()
		if err != nil {
			return err
		}
		defer s.Close()

		s.applier.Flush()
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, s.document.Style())
		}
		_, err = io.WriteString(os.Stdout, s.document.CSS())
		return err
	},
}
