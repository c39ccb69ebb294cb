// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastui/internal/model"
)

// Default configuration values.
const (
	DefaultWidth         = 40
	DefaultGap           = 1
	DefaultOffsetX       = 1
	DefaultOffsetY       = 0
	DefaultFrameInterval = 100 * time.Millisecond
	DefaultVolume        = 80
	DefaultLogLevel      = "warn"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "100ms", "5s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '100ms', '5s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the toastui configuration.
type Config struct {
	Display DisplayConfig `toml:"display"`
	Audio   AudioConfig   `toml:"audio"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	History HistoryConfig `toml:"history"`
}

// DisplayConfig holds terminal layout settings.
type DisplayConfig struct {
	Width         int      `toml:"width"`          // Default toast width in cells
	Gap           int      `toml:"gap"`            // Blank lines between stacked toasts
	OffsetX       int      `toml:"offset_x"`       // Cells from the left/right screen edge
	OffsetY       int      `toml:"offset_y"`       // Lines from the top/bottom screen edge
	DemoPosition  string   `toml:"demo_position"`  // Anchor used by the demo keys
	FrameInterval Duration `toml:"frame_interval"` // Progress bar redraw interval
}

// AudioConfig holds sound cue settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig holds per-type sound file paths. Empty means silent.
type SoundConfig struct {
	Default string `toml:"default"`
	Success string `toml:"success"`
	Error   string `toml:"error"`
	Warning string `toml:"warning"`
	Info    string `toml:"info"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // Empty = default state path
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Addr string `toml:"addr"` // Empty = disabled, e.g. "127.0.0.1:9464"
}

// HistoryConfig holds the dismissal log settings.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Empty = default data path
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:         DefaultWidth,
			Gap:           DefaultGap,
			OffsetX:       DefaultOffsetX,
			OffsetY:       DefaultOffsetY,
			DemoPosition:  string(model.DefaultPosition),
			FrameInterval: Duration(DefaultFrameInterval),
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  DefaultVolume,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		History: HistoryConfig{
			Enabled: false,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastui", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "toastui")
}

// StatePath returns the path to the state directory (logs).
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state.
func StatePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "toastui")
}

// HistoryPath returns the configured dismissal log path, or the default one.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return expandPath(c.History.Path)
	}
	return filepath.Join(DataPath(), "dismissed.jsonl")
}

// LogPath returns the configured log file path, or the default one.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return expandPath(c.Log.File)
	}
	return filepath.Join(StatePath(), "toastui.log")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validPos := false
	for _, p := range model.Positions() {
		if c.Display.DemoPosition == string(p) {
			validPos = true
			break
		}
	}
	if !validPos {
		return fmt.Errorf("invalid demo_position %q, must be one of: %v", c.Display.DemoPosition, model.Positions())
	}

	if c.Display.Width < 10 || c.Display.Width > 200 {
		return fmt.Errorf("width must be between 10 and 200, got %d", c.Display.Width)
	}
	if c.Display.Gap < 0 || c.Display.Gap > 10 {
		return fmt.Errorf("gap must be between 0 and 10, got %d", c.Display.Gap)
	}
	if c.Display.OffsetX < 0 || c.Display.OffsetY < 0 {
		return fmt.Errorf("offsets must not be negative, got x=%d y=%d", c.Display.OffsetX, c.Display.OffsetY)
	}
	if c.Display.FrameInterval.Duration() < 10*time.Millisecond {
		return fmt.Errorf("frame_interval must be at least 10ms, got %s", c.Display.FrameInterval.Duration())
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	return nil
}

// SoundFor returns the sound file path for the given toast type.
// Expands ~ to home directory.
func (c *Config) SoundFor(t model.Type) string {
	var path string
	switch t {
	case model.TypeSuccess:
		path = c.Audio.Sounds.Success
	case model.TypeError:
		path = c.Audio.Sounds.Error
	case model.TypeWarning:
		path = c.Audio.Sounds.Warning
	case model.TypeInfo:
		path = c.Audio.Sounds.Info
	default:
		path = c.Audio.Sounds.Default
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
