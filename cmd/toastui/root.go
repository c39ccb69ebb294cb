// Package main provides the CLI entrypoint for toastui.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		configPath  string
		logFile     string
		historyFile string
		metricsAddr string
		feed        string
	}
	logger    *slog.Logger
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toastui",
	Short: "Toast notifications for the terminal",
	Long: `toastui shows transient toast notifications in the terminal.

Toasts stack at one of six screen anchors, close themselves after their
display duration and can be dismissed from the keyboard. Requests can be
streamed in as JSON lines with --feed, or replayed from a YAML script with
the play subcommand.

Running toastui without a subcommand starts the interactive host.

Key bindings:
  s/e/w/i/n   Raise a success/error/warning/info/default toast
  p           Cycle the anchor new toasts are raised at
  x           Dismiss the newest toast
  X           Dismiss every toast
  space       Pause or resume auto-close
  ?           Show help
  q           Quit`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := setupLogger(cfg); err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHost(cmd.Context(), nil)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/toastui/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.logFile, "log-file", "",
		"Path to log file (default: ~/.local/state/toastui/toastui.log)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Log dismissed toasts to this JSONL file (enables history)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address, e.g. :9464")

	rootCmd.Flags().StringVar(&globalOpts.feed, "feed", "",
		"Read JSON-lines toast requests from this file (- for stdin)")
}

// setupLogger configures the global slog logger. The terminal belongs to the
// TUI, so logs go to a file.
func setupLogger(c *config.Config) error {
	level := parseLevel(c.Log.Level)
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	path := globalOpts.logFile
	if path == "" {
		path = c.LogPath()
	}

	var w io.Writer = io.Discard
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		w = f
		logCloser = f
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
