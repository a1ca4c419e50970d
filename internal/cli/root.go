// Package cli implements the themekit command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/themekit/internal/config"
	"github.com/opencode-ai/themekit/internal/logging"
)

var (
	cfgFile        string
	logLevel       string
	jsonOutput     bool
	jsonlOutput    bool
	nonInteractive bool
	noProgress     bool
	noColor        bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "themekit",
	Short: "Manage and apply color themes",
	Long: `themekit selects, customizes and applies color themes.

Theme selection, dark mode and customization persist between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/themekit/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "override logging level (trace, debug, info, warn, error)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt; fail instead")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		return err
	}
	return nil
}

func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	appConfig = cfg
	return nil
}

// GetConfig returns the loaded configuration, or defaults before loading.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// IsJSONOutput reports whether --json was requested.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was requested.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput encodes v as JSON or JSON lines depending on flags.
func WriteOutput(out io.Writer, v any) error {
	if IsJSONLOutput() {
		return writeJSONL(out, v)
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeJSONL writes one line per element when v is a slice, and v itself
// otherwise. Byte slices such as json.RawMessage are a single value.
func writeJSONL(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	items := reflect.ValueOf(v)
	if items.Kind() != reflect.Slice || items.Type().Elem().Kind() == reflect.Uint8 {
		return encoder.Encode(v)
	}
	for i := 0; i < items.Len(); i++ {
		if err := encoder.Encode(items.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// PreflightError is a user-facing failure with a hint and next step.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	return e.Message
}

func printError(out io.Writer, err error) {
	var preflight *PreflightError
	if pe, ok := err.(*PreflightError); ok {
		preflight = pe
	}
	fmt.Fprintf(out, "%s %s\n", colorize("error:", colorRed), err)
	if preflight == nil {
		return
	}
	if strings.TrimSpace(preflight.Hint) != "" {
		fmt.Fprintf(out, "  hint: %s\n", preflight.Hint)
	}
	if strings.TrimSpace(preflight.NextStep) != "" {
		fmt.Fprintf(out, "  try:  %s\n", preflight.NextStep)
	}
}
