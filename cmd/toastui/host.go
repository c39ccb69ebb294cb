package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/toastui/internal/audio"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/input"
	"github.com/jmylchreest/toastui/internal/metrics"
	"github.com/jmylchreest/toastui/internal/provider"
	"github.com/jmylchreest/toastui/internal/store"
	"github.com/jmylchreest/toastui/internal/tui"
)

// backgroundFunc runs alongside the TUI once the toast provider is mounted.
// Returning an error stops the program.
type backgroundFunc func(ctx context.Context, p *tea.Program) error

// runHost mounts the toast provider, starts the configured services and runs
// the TUI until it quits, the context is cancelled or a service fails.
func runHost(parent context.Context, background backgroundFunc) error {
	if parent == nil {
		parent = context.Background()
	}
	sigCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)

	ctx, prov, err := provider.Mount(sigCtx, logger, store.WithObserver(collector.Observe))
	if err != nil {
		return fmt.Errorf("failed to mount toast provider: %w", err)
	}
	defer func() {
		if err := prov.Unmount(); err != nil {
			logger.Warn("failed to unmount toast provider", "error", err)
		}
	}()
	handle := prov.Handle()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	m, err := tui.New(gctx, tui.Options{Display: cfg.Display, Logger: logger})
	if err != nil {
		return err
	}
	p := tui.NewProgram(gctx, m)

	// Audio
	player := audio.NewManager(cfg, logger)
	defer player.Stop()
	audioChanges := handle.AllChanges()
	defer handle.StopChanges(audioChanges)
	g.Go(func() error {
		player.Run(gctx, audioChanges)
		return nil
	})

	// Dismissal history
	if path := historyPath(); path != "" {
		rec, err := history.Open(path, logger)
		if err != nil {
			return fmt.Errorf("failed to open history log: %w", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Warn("failed to close history log", "error", err)
			}
		}()
		historyChanges := handle.AllChanges()
		defer handle.StopChanges(historyChanges)
		g.Go(func() error {
			rec.Run(gctx, historyChanges)
			return nil
		})
	}

	// Metrics
	if addr := metricsAddr(); addr != "" {
		router := metrics.Router(reg, prov.Mounted)
		g.Go(func() error {
			return metrics.Serve(gctx, addr, router, logger)
		})
	}

	// Config hot reload
	watcher, err := config.NewWatcher(globalOpts.configPath, cfg, logger)
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		watcher.SetReloadCallback(func(c *config.Config) {
			player.UpdateConfig(c)
			p.Send(tui.ConfigMsg{Config: c})
		})
		if err := watcher.Start(gctx); err != nil {
			logger.Warn("failed to watch config", "error", err)
		}
		defer func() { _ = watcher.Stop() }()
	}

	// Feed
	if globalOpts.feed != "" {
		r, closeFeed, err := openFeed(globalOpts.feed)
		if err != nil {
			return err
		}
		defer closeFeed()
		g.Go(func() error {
			if err := input.Feed(gctx, r, input.Facade{}, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("feed finished with errors", "error", err)
			}
			return nil
		})
	}

	if background != nil {
		g.Go(func() error {
			return background(gctx, p)
		})
	}

	// Stdin may carry the feed; bubbletea opens the controlling TTY for keys
	// when stdin is not a terminal.
	_, runErr := p.Run()
	cancel()

	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", runErr)
	}
	return nil
}

func historyPath() string {
	if globalOpts.historyFile != "" {
		return globalOpts.historyFile
	}
	if cfg.History.Enabled {
		return cfg.HistoryPath()
	}
	return ""
}

func metricsAddr() string {
	if globalOpts.metricsAddr != "" {
		return globalOpts.metricsAddr
	}
	return cfg.Metrics.Addr
}

func openFeed(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open feed: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
