package audio

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/store"
)

// Sink plays a decoded sound file.
type Sink interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	ClearCache()
	Close()
}

// Manager maps toast types to sounds and plays them as toasts are raised.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	sink    Sink
	enabled bool
	sounds  map[model.Type]string
}

// NewManager creates a manager playing through the beep speaker.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return NewManagerWithSink(cfg, NewPlayer(logger), logger)
}

// NewManagerWithSink creates a manager playing through sink.
func NewManagerWithSink(cfg *config.Config, sink Sink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger: logger,
		sink:   sink,
		sounds: make(map[model.Type]string),
	}
	m.UpdateConfig(cfg)
	return m
}

// UpdateConfig applies a (re)loaded configuration.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	sounds := make(map[model.Type]string)
	for _, t := range model.Types() {
		path := cfg.SoundFor(t)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "type", t, "path", path)
			continue
		}
		sounds[t] = path
	}

	m.sink.ClearCache()
	m.sink.SetVolume(float64(cfg.Audio.Volume) / 100.0)

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()

	if cfg.Audio.Enabled {
		for t, path := range sounds {
			if err := m.sink.Preload(path); err != nil {
				m.logger.Warn("failed to preload sound", "type", t, "path", path, "error", err)
			}
		}
	}

	m.logger.Debug("audio configured", "enabled", cfg.Audio.Enabled, "sounds", len(sounds))
}

// PlayFor plays the sound configured for the given toast type, if any.
func (m *Manager) PlayFor(t model.Type) error {
	m.mu.RLock()
	enabled := m.enabled
	path, ok := m.sounds[t]
	m.mu.RUnlock()

	if !enabled || !ok {
		return nil
	}
	return m.sink.Play(path)
}

// Run plays a sound for every toast added until ctx is done or changes closes.
func (m *Manager) Run(ctx context.Context, changes <-chan store.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-changes:
			if !ok {
				return
			}
			if ev.Type != store.ChangeTypeAdd {
				continue
			}
			if err := m.PlayFor(ev.Record.Type); err != nil {
				m.logger.Warn("failed to play sound", "type", ev.Record.Type, "error", err)
			}
		}
	}
}

// Stop releases the audio device.
func (m *Manager) Stop() {
	m.sink.Close()
	m.logger.Debug("audio manager stopped")
}
