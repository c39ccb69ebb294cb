package input

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/model"
)

const demoScript = `
name: demo
steps:
  - toast:
      message: Saved
      type: success
  - after: 10ms
    label: upload
    toast:
      message: Uploading
      type: info
      position: bottom-center
      progress_bar: false
  - after: 5ms
    toast:
      message: Careful
      type: warning
  - dismiss: last
  - dismiss: upload
  - dismiss: all
`

func TestParseScript(t *testing.T) {
	s, err := ParseScript(strings.NewReader(demoScript))
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Name)
	require.Len(t, s.Steps, 6)
	assert.Equal(t, 10*time.Millisecond, s.Steps[1].After)
	assert.Equal(t, "upload", s.Steps[1].Label)
	assert.Equal(t, model.PositionBottomCenter, s.Steps[1].Toast.Position)
	require.NotNil(t, s.Steps[1].Toast.ProgressBar)
	assert.False(t, *s.Steps[1].Toast.ProgressBar)
	assert.Equal(t, 15*time.Millisecond, s.Duration())
}

func TestParseScript_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"empty", "", "empty"},
		{"no steps", "name: x\n", "no steps"},
		{"both", "steps:\n  - toast: {message: a}\n    dismiss: last\n", "both"},
		{"neither", "steps:\n  - after: 1s\n", "must raise"},
		{"bad toast", "steps:\n  - toast: {message: a, type: loud}\n", "invalid toast type"},
		{"unknown label", "steps:\n  - dismiss: nope\n", "unknown dismiss target"},
		{"label before use", "steps:\n  - dismiss: a\n  - label: a\n    toast: {message: x}\n", "unknown dismiss target"},
		{"duplicate label", "steps:\n  - label: a\n    toast: {message: x}\n  - label: a\n    toast: {message: y}\n", "duplicate label"},
		{"negative delay", "steps:\n  - after: -1s\n    dismiss: all\n", "negative delay"},
		{"unknown field", "steps:\n  - toast: {message: a, colour: red}\n", "failed to parse"},
		{"bad duration", "steps:\n  - after: soon\n    dismiss: all\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(strings.NewReader(tt.script))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScriptError_Step(t *testing.T) {
	_, err := ParseScript(strings.NewReader("steps:\n  - toast: {message: ok}\n  - toast: {message: \"\"}\n"))
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Step)
	assert.ErrorIs(t, err, model.ErrEmptyMessage)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demoScript), 0644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 6)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScript_Play(t *testing.T) {
	s, err := ParseScript(strings.NewReader(demoScript))
	require.NoError(t, err)

	sink := &recordingSink{}
	start := time.Now()
	require.NoError(t, s.Play(context.Background(), sink, nil))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	require.Len(t, sink.requests, 3)
	assert.Equal(t, "Saved", sink.requests[0].Message)
	assert.Equal(t, "Careful", sink.requests[2].Message)

	// last -> id-3, upload -> id-2, all -> the remaining id-1
	assert.Equal(t, []string{"id-3", "id-2", "id-1"}, sink.removed)
}

func TestScript_PlayCancelled(t *testing.T) {
	s, err := ParseScript(strings.NewReader("steps:\n  - after: 1h\n    toast: {message: never}\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	assert.ErrorIs(t, s.Play(ctx, sink, nil), context.Canceled)
	assert.Empty(t, sink.requests)
}

func TestScript_PlayStopsOnSinkError(t *testing.T) {
	s, err := ParseScript(strings.NewReader("steps:\n  - toast: {message: a}\n"))
	require.NoError(t, err)

	sink := &recordingSink{err: assert.AnError}
	err = s.Play(context.Background(), sink, nil)

	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Step)
	assert.ErrorIs(t, err, assert.AnError)
}
