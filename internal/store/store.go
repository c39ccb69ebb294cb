// Package store owns the live collection of toasts and their lifecycle.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/toastui/internal/model"
)

// ExitDelay is how long a toast stays in the exiting state before it is evicted.
// It matches the presenter's exit animation.
const ExitDelay = 300 * time.Millisecond

// subscriberBuffer is the channel capacity for each subscriber.
const subscriberBuffer = 64

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates a toast was appended.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeExiting indicates a toast entered its exit transition.
	ChangeTypeExiting
	// ChangeTypeEvict indicates a toast was removed from the collection.
	ChangeTypeEvict
)

// String returns the string representation of ChangeType.
func (c ChangeType) String() string {
	switch c {
	case ChangeTypeAdd:
		return "add"
	case ChangeTypeExiting:
		return "exiting"
	case ChangeTypeEvict:
		return "evict"
	default:
		return "unknown"
	}
}

// ChangeEvent signals a mutation of the collection.
// Record is a copy of the affected toast as of the change, and At is the store
// clock reading when the change happened.
type ChangeEvent struct {
	Type   ChangeType
	ID     string
	Record model.Record
	At     time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for timestamps and eviction timers.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers a callback invoked synchronously for every change, in
// mutation order. The callback runs with the store lock held and must not call
// back into the store.
func WithObserver(fn func(ChangeEvent)) Option {
	return func(s *Store) {
		s.observers = append(s.observers, fn)
	}
}

// Store manages the ordered collection of live toasts with thread-safe operations.
type Store struct {
	mu     sync.RWMutex
	toasts []model.Record
	index  map[string]int // id -> slice index

	// Pending evictions, one per exiting toast.
	timers map[string]Timer
	// Bumped on Close so timers that already fired do not act on a dead store.
	epoch uint64

	clock     Clock
	logger    *slog.Logger
	observers []func(ChangeEvent)

	subscribers []chan ChangeEvent
	queued      []*queuedSubscriber
	closed      bool
}

// New creates a new Store.
func New(opts ...Option) *Store {
	s := &Store{
		toasts:      make([]model.Record, 0),
		index:       make(map[string]int),
		timers:      make(map[string]Timer),
		clock:       RealClock{},
		logger:      slog.Default(),
		subscribers: make([]chan ChangeEvent, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify appends a new toast built from req and returns its id.
// Auto-close is left to the presenter. On a closed store it does nothing and
// returns an empty id.
func (s *Store) Notify(req model.Request) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Debug("notify on closed store ignored", "message", req.Message)
		return ""
	}

	now := s.clock.Now()
	id := s.newIDLocked(now)
	rec := model.Resolve(id, req, now)

	s.index[id] = len(s.toasts)
	s.toasts = append(s.toasts, rec)

	s.logger.Debug("toast added",
		"id", id,
		"type", rec.Type,
		"position", rec.Position,
		"duration_ms", rec.Duration,
	)

	s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, ID: id, Record: rec.Clone()})
	return id
}

// newIDLocked returns an id no live toast uses. Caller must hold the lock.
func (s *Store) newIDLocked(now time.Time) string {
	for {
		id, err := model.NewID(now)
		if err != nil {
			s.logger.Warn("falling back to default ULID entropy", "error", err)
			id = ulid.Make().String()
		}
		if _, exists := s.index[id]; !exists {
			return id
		}
	}
}

// Remove starts the exit transition of a toast and schedules its eviction.
// Unknown and already exiting ids are ignored, so concurrent dismissals of the
// same toast schedule exactly one eviction.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	idx, exists := s.index[id]
	if !exists || s.toasts[idx].Exiting {
		return
	}

	s.toasts[idx].Exiting = true
	epoch := s.epoch
	s.timers[id] = s.clock.AfterFunc(ExitDelay, func() {
		s.evict(id, epoch)
	})

	s.logger.Debug("toast exiting", "id", id)
	s.notifyChange(ChangeEvent{Type: ChangeTypeExiting, ID: id, Record: s.toasts[idx].Clone()})
}

// RemoveAll starts the exit transition of every visible toast.
func (s *Store) RemoveAll() {
	for _, rec := range s.Toasts() {
		if !rec.Exiting {
			s.Remove(rec.ID)
		}
	}
}

// evict drops an exiting toast from the collection.
func (s *Store) evict(id string, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || epoch != s.epoch {
		return
	}
	delete(s.timers, id)

	idx, exists := s.index[id]
	if !exists {
		return
	}
	rec := s.toasts[idx]

	s.toasts = append(s.toasts[:idx], s.toasts[idx+1:]...)
	s.rebuildIndexLocked()

	s.logger.Debug("toast evicted", "id", id, "remaining", len(s.toasts))
	s.notifyChange(ChangeEvent{Type: ChangeTypeEvict, ID: id, Record: rec.Clone()})
}

// rebuildIndexLocked recomputes the id index. Caller must hold the lock.
func (s *Store) rebuildIndexLocked() {
	s.index = make(map[string]int, len(s.toasts))
	for i, rec := range s.toasts {
		s.index[rec.ID] = i
	}
}

// Toasts returns a snapshot of the live toasts in insertion order.
func (s *Store) Toasts() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Record, len(s.toasts))
	for i := range s.toasts {
		result[i] = s.toasts[i].Clone()
	}
	return result
}

// Get returns a copy of the toast with the given id.
func (s *Store) Get(id string) (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.index[id]
	if !exists {
		return model.Record{}, false
	}
	return s.toasts[idx].Clone(), true
}

// Count returns the number of live toasts, exiting ones included.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.toasts)
}

// PendingEvictions returns the number of scheduled eviction timers.
func (s *Store) PendingEvictions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.timers)
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Subscribe returns a channel that receives change events.
// Delivery is non-blocking; a slow subscriber may miss events and should
// re-read Toasts on each event it does receive.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// SubscribeAll returns a channel that receives every change event in order.
// Events queue up without bound until the consumer reads them, so consumers
// that must not miss an event (such as an eviction log) use this instead of
// Subscribe. Close delivers the queued events before closing the channel;
// Unsubscribe drops them.
func (s *Store) SubscribeAll() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := newQueuedSubscriber()
	if s.closed {
		q.finish()
		return q.out
	}
	s.queued = append(s.queued, q)
	return q.out
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
	for i, q := range s.queued {
		if q.out == ch {
			s.queued = append(s.queued[:i], s.queued[i+1:]...)
			q.cancel()
			return
		}
	}
}

// Close stops pending evictions, drops all toasts and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.epoch++

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}

	s.toasts = nil
	s.index = make(map[string]int)

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	for _, q := range s.queued {
		q.finish()
	}
	s.queued = nil

	return nil
}

// notifyChange runs observers and sends the event to all subscribers (non-blocking).
// Caller must hold the lock.
func (s *Store) notifyChange(event ChangeEvent) {
	event.At = s.clock.Now()
	for _, fn := range s.observers {
		fn(event)
	}
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
	for _, q := range s.queued {
		q.push(event)
	}
}
