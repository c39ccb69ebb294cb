// Package input drives toasts from outside the interface code: a JSON-lines
// request feed and timed YAML scripts. Both go through the process-wide toast
// handle, so a provider must be mounted before they run.
package input

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/toast"
)

// Sink receives the toasts raised and dismissed by a feed or script.
type Sink interface {
	Notify(req model.Request) (string, error)
	Remove(id string) error
}

// Facade is the Sink backed by the toast package's global handle.
type Facade struct{}

// Notify raises a toast through the global handle.
func (Facade) Notify(req model.Request) (string, error) { return toast.Notify(req) }

// Remove dismisses a toast through the global handle.
func (Facade) Remove(id string) error { return toast.Remove(id) }

// FeedError reports a feed line that could not be turned into a toast.
type FeedError struct {
	Line int
	Err  error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed line %d: %v", e.Line, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// ScriptError reports an invalid or failed script step.
type ScriptError struct {
	Step int
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script step %d: %v", e.Step, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// sanitize replaces control characters (other than newline and tab) with spaces.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return ' '
		}
		if r == 127 {
			return -1
		}
		return r
	}, s)
}
