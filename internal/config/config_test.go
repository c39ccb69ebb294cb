package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultWidth, cfg.Display.Width)
	assert.Equal(t, DefaultGap, cfg.Display.Gap)
	assert.Equal(t, "top-right", cfg.Display.DemoPosition)
	assert.Equal(t, DefaultFrameInterval, cfg.Display.FrameInterval.Duration())
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, DefaultVolume, cfg.Audio.Volume)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.False(t, cfg.History.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[display]
width = 60
gap = 0
offset_x = 2
offset_y = 1
demo_position = "bottom-center"
frame_interval = "50ms"

[audio]
enabled = false
volume = 30

[audio.sounds]
error = "/usr/share/sounds/error.oga"

[log]
level = "debug"

[metrics]
addr = "127.0.0.1:9464"

[history]
enabled = true
path = "/tmp/dismissed.jsonl"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Display.Width)
	assert.Equal(t, 0, cfg.Display.Gap)
	assert.Equal(t, 2, cfg.Display.OffsetX)
	assert.Equal(t, 1, cfg.Display.OffsetY)
	assert.Equal(t, "bottom-center", cfg.Display.DemoPosition)
	assert.Equal(t, 50*time.Millisecond, cfg.Display.FrameInterval.Duration())
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 30, cfg.Audio.Volume)
	assert.Equal(t, "/usr/share/sounds/error.oga", cfg.SoundFor(model.TypeError))
	assert.Empty(t, cfg.SoundFor(model.TypeSuccess))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/dismissed.jsonl", cfg.HistoryPath())
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("[display]\nwidth = 50\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Display.Width)
	// Unchanged fields keep their defaults
	assert.Equal(t, DefaultGap, cfg.Display.Gap)
	assert.Equal(t, "top-right", cfg.Display.DemoPosition)
	assert.True(t, cfg.Audio.Enabled)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad position", "[display]\ndemo_position = \"middle\"\n"},
		{"narrow", "[display]\nwidth = 2\n"},
		{"negative gap", "[display]\ngap = -1\n"},
		{"negative offset", "[display]\noffset_x = -3\n"},
		{"fast frames", "[display]\nframe_interval = \"1ms\"\n"},
		{"bad duration", "[display]\nframe_interval = \"soon\"\n"},
		{"loud", "[audio]\nvolume = 101\n"},
		{"bad level", "[log]\nlevel = \"chatty\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"250", 250 * time.Millisecond, false},
		{"5s", 5 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.Display.DemoPosition = "top-left"
	cfg.Display.FrameInterval = Duration(40 * time.Millisecond)
	cfg.Audio.Sounds.Info = "/tmp/ping.wav"

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSoundFor_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Audio.Sounds.Default = "~/sounds/pop.wav"
	assert.Equal(t, filepath.Join(home, "sounds/pop.wav"), cfg.SoundFor(model.TypeDefault))
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/toastui/config.toml", ConfigPath())
}

func TestDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/toastui", DataPath())
	assert.Equal(t, "/custom/data/toastui/dismissed.jsonl", DefaultConfig().HistoryPath())
}

func TestStatePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, "/custom/state/toastui", StatePath())
	assert.Equal(t, "/custom/state/toastui/toastui.log", DefaultConfig().LogPath())
}
