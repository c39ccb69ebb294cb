package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors produce on save.
const reloadDebounce = 250 * time.Millisecond

// Watcher watches the config file and reloads it on change.
// A file that fails to parse or validate is reported and the previous
// configuration stays in effect.
type Watcher struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	current  *Config
	onReload func(*Config)
	onError  func(error)
	timer    *time.Timer

	watcher *fsnotify.Watcher
	done    chan struct{}
	running bool
}

// NewWatcher creates a watcher for path, starting from the already loaded cfg.
func NewWatcher(path string, cfg *Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = ConfigPath()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:    path,
		logger:  logger,
		current: cfg,
		watcher: fw,
		done:    make(chan struct{}),
	}, nil
}

// SetReloadCallback sets the function called with each successfully reloaded config.
func (w *Watcher) SetReloadCallback(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// SetErrorCallback sets the function called when a reload fails.
func (w *Watcher) SetErrorCallback(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Current returns the config currently in effect.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins watching. The parent directory is watched rather than the file
// so that editors which replace the file on save are still seen.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.watch(ctx)
	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-ctx.Done():
			return

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	// A removed or renamed-away file would load as defaults. Keep the live
	// config until the file comes back.
	if _, err := os.Stat(w.path); errors.Is(err, os.ErrNotExist) {
		w.logger.Info("config file gone, keeping previous config", "path", w.path)
		return
	}

	cfg, err := LoadConfig(w.path)

	w.mu.Lock()
	onReload, onError := w.onReload, w.onError
	if err == nil {
		w.current = cfg
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("config reload failed, keeping previous config", "path", w.path, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.logger.Info("config reloaded", "path", w.path)
	if onReload != nil {
		onReload(cfg)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.watcher.Close()
}
