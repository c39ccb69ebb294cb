package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/input"
	"github.com/jmylchreest/toastui/internal/provider"
)

var playOpts struct {
	exit bool
}

var playCmd = &cobra.Command{
	Use:   "play <script.yaml>",
	Short: "Replay a scripted toast sequence",
	Long: `Replay a YAML toast script in the interactive host.

A script is a list of steps. Each step waits "after" (a Go duration such
as 500ms or 2s) and then either raises a toast or dismisses one:

  name: deploy
  steps:
    - toast: {message: "Deploying", type: info, duration: 5000}
      label: deploy
    - after: 2s
      dismiss: deploy
    - toast: {message: "Deployed", type: success}
    - after: 1s
      dismiss: all

dismiss accepts last, first, all or a label set by an earlier step.

The keyboard stays live while the script plays.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolVar(&playOpts.exit, "exit", false,
		"Quit once the script has finished and every toast has closed")
}

func runPlay(cmd *cobra.Command, args []string) error {
	script, err := input.LoadScript(args[0])
	if err != nil {
		return err
	}
	logger.Info("playing script", "name", script.Name, "steps", len(script.Steps), "length", script.Duration())

	return runHost(cmd.Context(), func(ctx context.Context, p *tea.Program) error {
		if err := script.Play(ctx, input.Facade{}, logger); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("script %q: %w", args[0], err)
		}
		logger.Info("script finished", "name", script.Name)

		if playOpts.exit {
			waitForEmpty(ctx)
			p.Quit()
		}
		return nil
	})
}

// waitForEmpty blocks until no toast is live or ctx is done.
func waitForEmpty(ctx context.Context) {
	h, err := provider.Use(ctx)
	if err != nil {
		return
	}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for len(h.Toasts()) > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
