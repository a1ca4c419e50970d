package cli

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opencode-ai/themekit/internal/tui"
)

func init() {
	rootCmd.AddCommand(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the theme preview",
	Long:  "Launch an interactive terminal preview of the current theme.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	if err := tuiPreflight(); err != nil {
		return err
	}

	cfg := GetConfig()
	s, err := openTerminalSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return tui.RunWithConfig(tui.Config{
		Facade:        s.facade,
		Registry:      s.registry,
		Applicator:    s.terminal,
		ShowVariables: cfg.TUI.ShowVariables,
	})
}

// tuiPreflight fails unless stdin and stdout are a terminal and prompts are
// allowed.
func tuiPreflight() error {
	if !IsNonInteractive() {
		return nil
	}
	return &PreflightError{
		Message:  "the preview requires an interactive terminal",
		Hint:     "Run without --non-interactive and with a TTY, or use CLI subcommands",
		NextStep: "themekit show",
	}
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// parseEnvDuration accepts Go durations or a bare number of seconds.
func parseEnvDuration(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed, true
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, true
	}
	return 0, false
}
