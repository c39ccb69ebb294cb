// Package provider hosts the single toast store of an application and exposes
// it to interface code through a context.Context scope.
//
// Mount creates the store, binds the process-wide toast handle to it and
// returns a context carrying the provider. Interface code that receives that
// context (or one derived from it) calls Use to read the live toasts and raise
// or dismiss toasts. Calling Use with any other context is a wiring bug and
// fails with ErrOutsideProvider.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/toastui/internal/layout"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/store"
	"github.com/jmylchreest/toastui/internal/toast"
)

// Configuration errors.
var (
	// ErrOutsideProvider is returned by Use when the context carries no mounted provider.
	ErrOutsideProvider = errors.New("provider: toast provider used outside its required ancestor scope")
	// ErrNestedProvider is returned by Mount when the context already carries a provider.
	ErrNestedProvider = errors.New("provider: toast providers cannot be nested")
)

type contextKey struct{}

// Provider owns the application's toast store.
type Provider struct {
	store  *store.Store
	logger *slog.Logger

	mu      sync.Mutex
	unbind  func()
	mounted bool
}

// Mount creates the store and binds the toast handle to it. It fails if ctx is
// already inside a provider, or if another provider is live in the process.
func Mount(ctx context.Context, logger *slog.Logger, opts ...store.Option) (context.Context, *Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := ctx.Value(contextKey{}).(*Provider); ok {
		return nil, nil, ErrNestedProvider
	}

	opts = append([]store.Option{store.WithLogger(logger)}, opts...)
	s := store.New(opts...)

	unbind, err := toast.Bind(s)
	if err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("mount toast provider: %w", err)
	}

	p := &Provider{
		store:   s,
		logger:  logger,
		unbind:  unbind,
		mounted: true,
	}

	logger.Debug("toast provider mounted")
	return context.WithValue(ctx, contextKey{}, p), p, nil
}

// Unmount returns the toast handle to its not-ready state and closes the store.
// Pending evictions are cancelled. Unmount is idempotent.
func (p *Provider) Unmount() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.mounted {
		return nil
	}
	p.mounted = false

	// Unbind first so imperative callers never reach a closing store.
	p.unbind()
	if err := p.store.Close(); err != nil {
		return fmt.Errorf("close toast store: %w", err)
	}

	p.logger.Debug("toast provider unmounted")
	return nil
}

// Mounted reports whether the provider is live.
func (p *Provider) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}

// Handle returns a handle on this provider's store.
func (p *Provider) Handle() *Handle {
	return &Handle{store: p.store}
}

// Use returns a handle on the provider carried by ctx.
func Use(ctx context.Context) (*Handle, error) {
	if ctx == nil {
		return nil, ErrOutsideProvider
	}
	p, ok := ctx.Value(contextKey{}).(*Provider)
	if !ok || p == nil {
		return nil, ErrOutsideProvider
	}
	if !p.Mounted() {
		return nil, fmt.Errorf("%w: provider has been unmounted", ErrOutsideProvider)
	}
	return p.Handle(), nil
}

// MustUse is like Use but panics when ctx is outside a provider.
func MustUse(ctx context.Context) *Handle {
	h, err := Use(ctx)
	if err != nil {
		panic(err)
	}
	return h
}

// Handle is the view interface code gets of the live toasts.
type Handle struct {
	store *store.Store
}

// Toasts returns the live toasts in insertion order.
func (h *Handle) Toasts() []model.Record {
	return h.store.Toasts()
}

// Groups returns the live toasts grouped by anchor.
func (h *Handle) Groups() layout.Groups {
	return h.Snapshot().Groups
}

// Snapshot is one consistent read of the live toasts together with their
// per-anchor grouping.
type Snapshot struct {
	Toasts []model.Record
	Groups layout.Groups
}

// Snapshot reads the live toasts once and groups that same read by anchor.
func (h *Handle) Snapshot() Snapshot {
	toasts := h.store.Toasts()
	return Snapshot{Toasts: toasts, Groups: layout.Group(toasts)}
}

// Notify raises a toast and returns its id.
func (h *Handle) Notify(req model.Request) string {
	return h.store.Notify(req)
}

// Remove dismisses a toast. Unknown or already exiting ids are ignored.
func (h *Handle) Remove(id string) {
	h.store.Remove(id)
}

// RemoveAll dismisses every visible toast.
func (h *Handle) RemoveAll() {
	h.store.RemoveAll()
}

// Changes subscribes to collection changes. Every mutation (append, exiting,
// eviction) produces an event; consumers re-render from Toasts or Groups.
func (h *Handle) Changes() <-chan store.ChangeEvent {
	return h.store.Subscribe()
}

// AllChanges subscribes to every collection change without loss. Events queue
// until read, so consumers that act on each event (sound cues, the dismissal
// log) use this rather than Changes.
func (h *Handle) AllChanges() <-chan store.ChangeEvent {
	return h.store.SubscribeAll()
}

// StopChanges releases a subscription obtained from Changes or AllChanges.
func (h *Handle) StopChanges(ch <-chan store.ChangeEvent) {
	h.store.Unsubscribe(ch)
}
