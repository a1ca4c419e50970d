package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/themekit/internal/logging"
	"github.com/opencode-ai/themekit/internal/themed"
)

var (
	daemonHost    string
	daemonPort    int
	daemonTimeout time.Duration
)

// Version is reported by the daemon; overridden at build time.
var Version = "dev"

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStatusCmd)

	daemonCmd.PersistentFlags().StringVar(&daemonHost, "host", "", "listen/connect host (default from config)")
	daemonCmd.PersistentFlags().IntVar(&daemonPort, "port", 0, "listen/connect port (default from config)")
	daemonStatusCmd.Flags().DurationVar(&daemonTimeout, "timeout", 3*time.Second, "request timeout")
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve the theme state over gRPC",
	Long: `Run the theme daemon in the foreground.

The daemon mounts the theme facade once and serves it to clients until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCurrentSession()
		if err != nil {
			return err
		}
		defer s.Close()

		daemon, err := themed.New(s.cfg, s.facade, logging.Component("themed"), themed.Options{
			Hostname: daemonHost,
			Port:     daemonPort,
			Version:  Version,
			Document: s.document,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return daemon.Run(ctx)
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := themed.Dial(daemonTarget())
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), daemonTimeout)
		defer cancel()

		ping, err := client.Ping(ctx)
		if err != nil {
			return &PreflightError{
				Message:  fmt.Sprintf("daemon not reachable at %s: %v", daemonTarget(), err),
				Hint:     "Start it with `themekit daemon` or check --host/--port",
				NextStep: "themekit daemon",
			}
		}
		state, err := client.GetState(ctx)
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, map[string]any{
				"ping":  ping,
				"state": state,
			})
		}

		rows := [][]string{
			{"Address:", daemonTarget()},
			{"Version:", ping.Version},
			{"Uptime:", formatDuration(time.Since(ping.StartedAt))},
			{"Theme:", fmt.Sprintf("%s (%s)", state.ThemeName, state.ThemeID)},
			{"Mode:", formatMode(state.IsDark)},
		}
		if state.LockedTheme != "" {
			rows = append(rows, []string{"Locked:", state.LockedTheme})
		}
		return writeTable(os.Stdout, nil, rows)
	},
}

func daemonTarget() string {
	cfg := GetConfig().Daemon
	if daemonHost != "" {
		cfg.Host = daemonHost
	}
	if daemonPort != 0 {
		cfg.Port = daemonPort
	}
	return cfg.Address()
}
