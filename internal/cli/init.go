package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/themekit/internal/config"
)

var initForce bool

// configDirFunc is swapped in tests.
var configDirFunc = config.DefaultConfigDir

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

const configTemplate = `# themekit Configuration File
#
# Every key can be overridden with THEMEKIT_<SECTION>_<KEY>,
# e.g. THEMEKIT_THEME_LOCKED=forest.

theme:
  # Theme used for fresh or rejected state.
  default: neutral-pro
  # Pin every session to one theme; set requests for other themes are ignored.
  locked: ""
  # How long transitions stay suppressed after a forced apply.
  transition_delay: 16ms
  storage_key: "themekit:theme-config"

storage:
  # file, sqlite or memory
  backend: sqlite
  # dir: ~/.local/share/themekit
  # database_path: ~/.local/share/themekit/themekit.db

logging:
  level: info
  format: console

daemon:
  host: 127.0.0.1
  port: 50061

tui:
  show_variables: true
`

type initResult struct {
	name    string
	status  string
	message string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file and the state database",
	RunE: func(cmd *cobra.Command, args []string) error {
		results := []initResult{createConfigFile()}
		if GetConfig().Storage.Backend == config.BackendSQLite {
			results = append(results, initDatabase())
		}

		if IsJSONOutput() || IsJSONLOutput() {
			out := make([]map[string]string, 0, len(results))
			for _, r := range results {
				out = append(out, map[string]string{"step": r.name, "status": r.status, "message": r.message})
			}
			return WriteOutput(os.Stdout, out)
		}

		rows := make([][]string, 0, len(results))
		failed := false
		for _, r := range results {
			rows = append(rows, []string{r.name, formatInitStatus(r.status), r.message})
			failed = failed || r.status == "failed"
		}
		if err := writeTable(os.Stdout, []string{"STEP", "STATUS", "DETAILS"}, rows); err != nil {
			return err
		}
		if failed {
			return fmt.Errorf("init failed")
		}
		return nil
	},
}

func formatInitStatus(status string) string {
	switch status {
	case "done":
		return colorize(status, colorGreen)
	case "skipped":
		return colorize(status, colorYellow)
	default:
		return colorize(status, colorRed)
	}
}

func createConfigFile() initResult {
	result := initResult{name: "Config file"}
	dir := configDirFunc()
	path := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(path); err == nil && !initForce {
		result.status = "skipped"
		result.message = fmt.Sprintf("%s already exists (use --force to overwrite)", path)
		return result
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.status = "failed"
		result.message = fmt.Sprintf("failed to create %s: %v", dir, err)
		return result
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		result.status = "failed"
		result.message = fmt.Sprintf("failed to write %s: %v", path, err)
		return result
	}

	result.status = "done"
	result.message = path
	return result
}

func initDatabase() initResult {
	result := initResult{name: "Database"}
	database, err := openDatabase()
	if err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	defer database.Close()

	result.status = "done"
	result.message = database.Path()
	return result
}
