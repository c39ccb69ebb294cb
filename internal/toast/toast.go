// Package toast is the process-wide handle for raising toasts from code that
// does not hold a provider context: background workers, feeds, signal handlers.
//
// The handle delegates to whichever store the mounted provider bound it to.
// Until a provider is mounted every call fails with ErrNotReady:
//
//	id, err := toast.Success("Settings saved")
//	if errors.Is(err, toast.ErrNotReady) {
//	    // the provider has not been mounted yet
//	}
package toast

import (
	"errors"
	"sync"

	"github.com/jmylchreest/toastui/internal/model"
)

// Errors returned by the handle.
var (
	// ErrNotReady is returned when the handle is used before a provider has bound it.
	ErrNotReady = errors.New("toast: handle not ready, no toast provider has been mounted yet")
	// ErrAlreadyBound is returned when a second store tries to bind while one is live.
	ErrAlreadyBound = errors.New("toast: handle already bound to a live toast provider")
)

// Target is what the handle delegates to.
type Target interface {
	Notify(req model.Request) string
	Remove(id string)
}

// State is the binding state of the handle.
type State int

const (
	// StateUninitialized means no store is bound; calls fail with ErrNotReady.
	StateUninitialized State = iota
	// StateBound means calls are delegated to a live store.
	StateBound
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBound:
		return "bound"
	default:
		return "unknown"
	}
}

// binding is the replaceable pair of delegates.
type binding struct {
	notify func(model.Request) string
	remove func(string)
}

var (
	mu      sync.RWMutex
	current *binding
)

// Bind points the handle at target. The returned func unbinds it again; calling
// it after another target has been bound has no effect.
func Bind(target Target) (func(), error) {
	if target == nil {
		return nil, errors.New("toast: cannot bind a nil target")
	}

	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return nil, ErrAlreadyBound
	}

	b := &binding{
		notify: target.Notify,
		remove: target.Remove,
	}
	current = b

	var once sync.Once
	unbind := func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			if current == b {
				current = nil
			}
		})
	}
	return unbind, nil
}

// CurrentState reports whether the handle is bound.
func CurrentState() State {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return StateUninitialized
	}
	return StateBound
}

// Ready reports whether calls will be delegated.
func Ready() bool {
	return CurrentState() == StateBound
}

func active() (*binding, error) {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil, ErrNotReady
	}
	return current, nil
}

// Notify raises a toast on the bound store and returns its id.
func Notify(req model.Request) (string, error) {
	b, err := active()
	if err != nil {
		return "", err
	}
	return b.notify(req), nil
}

// Remove dismisses a toast on the bound store. Unknown ids are ignored.
func Remove(id string) error {
	b, err := active()
	if err != nil {
		return err
	}
	b.remove(id)
	return nil
}

// Success raises a success toast with default options.
//
//	toast.Success("Changes saved!")
func Success(message string) (string, error) {
	return Notify(model.Request{Message: message, Type: model.TypeSuccess})
}

// Error raises an error toast with default options.
func Error(message string) (string, error) {
	return Notify(model.Request{Message: message, Type: model.TypeError})
}

// Warning raises a warning toast with default options.
func Warning(message string) (string, error) {
	return Notify(model.Request{Message: message, Type: model.TypeWarning})
}

// Info raises an info toast with default options.
func Info(message string) (string, error) {
	return Notify(model.Request{Message: message, Type: model.TypeInfo})
}
