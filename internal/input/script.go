package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastui/internal/model"
)

// Dismiss targets with a fixed meaning. Any other value names a toast step by its label.
const (
	DismissLast  = "last"
	DismissFirst = "first"
	DismissAll   = "all"
)

// Script is a timed sequence of toast actions.
type Script struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step waits After, then either raises Toast or dismisses the Dismiss target.
type Step struct {
	After   time.Duration  `yaml:"after,omitempty"`
	Label   string         `yaml:"label,omitempty"`
	Toast   *model.Request `yaml:"toast,omitempty"`
	Dismiss string         `yaml:"dismiss,omitempty"`
}

// LoadScript reads and validates a YAML script file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseScript(f)
}

// ParseScript decodes and validates a YAML script.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("script is empty")
		}
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every step. Labels must be unique and defined before they are dismissed.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("script has no steps")
	}

	labels := make(map[string]bool)
	for i := range s.Steps {
		step := &s.Steps[i]
		n := i + 1

		if step.After < 0 {
			return &ScriptError{Step: n, Err: fmt.Errorf("negative delay %s", step.After)}
		}

		switch {
		case step.Toast != nil && step.Dismiss != "":
			return &ScriptError{Step: n, Err: errors.New("step cannot both raise and dismiss")}

		case step.Toast != nil:
			step.Toast.Message = sanitize(step.Toast.Message)
			if err := step.Toast.Validate(); err != nil {
				return &ScriptError{Step: n, Err: err}
			}
			if step.Label != "" {
				if labels[step.Label] {
					return &ScriptError{Step: n, Err: fmt.Errorf("duplicate label %q", step.Label)}
				}
				labels[step.Label] = true
			}

		case step.Dismiss != "":
			switch step.Dismiss {
			case DismissLast, DismissFirst, DismissAll:
			default:
				if !labels[step.Dismiss] {
					return &ScriptError{Step: n, Err: fmt.Errorf("unknown dismiss target %q", step.Dismiss)}
				}
			}

		default:
			return &ScriptError{Step: n, Err: errors.New("step must raise a toast or dismiss one")}
		}
	}
	return nil
}

// Duration returns the sum of all step delays.
func (s *Script) Duration() time.Duration {
	var total time.Duration
	for _, step := range s.Steps {
		total += step.After
	}
	return total
}

// Play runs the script against sink, sleeping between steps. It stops early
// when ctx is done or a step fails.
func (s *Script) Play(ctx context.Context, sink Sink, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = Facade{}
	}

	var raised []string // ids still considered live, in order
	byLabel := make(map[string]string)

	for i, step := range s.Steps {
		if step.After > 0 {
			timer := time.NewTimer(step.After)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if step.Toast != nil {
			id, err := sink.Notify(*step.Toast)
			if err != nil {
				return &ScriptError{Step: i + 1, Err: err}
			}
			raised = append(raised, id)
			if step.Label != "" {
				byLabel[step.Label] = id
			}
			logger.Debug("script raised toast", "step", i+1, "id", id)
			continue
		}

		var targets []string
		switch step.Dismiss {
		case DismissLast:
			if len(raised) > 0 {
				targets = raised[len(raised)-1:]
			}
		case DismissFirst:
			if len(raised) > 0 {
				targets = raised[:1]
			}
		case DismissAll:
			targets = raised
		default:
			if id, ok := byLabel[step.Dismiss]; ok {
				targets = []string{id}
			}
		}

		for _, id := range targets {
			if err := sink.Remove(id); err != nil {
				return &ScriptError{Step: i + 1, Err: err}
			}
			logger.Debug("script dismissed toast", "step", i+1, "id", id)
		}
		raised = without(raised, targets)
	}

	return nil
}

func without(ids, drop []string) []string {
	if len(drop) == 0 {
		return ids
	}
	skip := make(map[string]bool, len(drop))
	for _, id := range drop {
		skip[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}
