package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/store"
	"github.com/jmylchreest/toastui/internal/store/storetest"
)

func newTestStore(t *testing.T) (*store.Store, *storetest.FakeClock) {
	t.Helper()
	clock := storetest.NewFakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s := store.New(store.WithClock(clock))
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func ids(records []model.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestNew(t *testing.T) {
	s := store.New()
	defer s.Close()
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.Toasts())
}

func TestStore_Notify_DistinctIDsInCallOrder(t *testing.T) {
	s, _ := newTestStore(t)

	var want []string
	seen := make(map[string]bool)
	for i := range 50 {
		id := s.Notify(model.Request{Message: "toast", Duration: model.Millis(1000 + i)})
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		want = append(want, id)
	}

	assert.Equal(t, want, ids(s.Toasts()))
}

func TestStore_Notify_EndToEnd(t *testing.T) {
	s, clock := newTestStore(t)

	id := s.Notify(model.Request{Message: "ok", Type: model.TypeSuccess, Duration: model.Millis(5000)})
	require.NotEmpty(t, id)

	toasts := s.Toasts()
	require.Len(t, toasts, 1)
	rec := toasts[0]
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "ok", rec.Message)
	assert.Equal(t, model.TypeSuccess, rec.Type)
	assert.Equal(t, 5000, rec.Duration)
	assert.False(t, rec.Exiting)
	assert.Equal(t, clock.Now(), rec.CreatedAt)
	assert.Equal(t, model.PositionTopRight, rec.Position)
	assert.Equal(t, model.AnimationSlide, rec.Animation)
	assert.True(t, rec.ProgressBar)
	assert.Equal(t, model.ThemeLight, rec.Theme)
	assert.True(t, rec.ShowIcon)
	assert.Equal(t, model.ClosePositionInline, rec.ClosePosition)
}

func TestStore_Notify_DoesNotAutoClose(t *testing.T) {
	s, clock := newTestStore(t)

	s.Notify(model.Request{Message: "stays", Duration: model.Millis(100)})
	clock.Advance(time.Minute)

	require.Equal(t, 1, s.Count())
	assert.False(t, s.Toasts()[0].Exiting)
	assert.Equal(t, 0, clock.Pending())
}

func TestStore_Remove_UnknownIDIsNoop(t *testing.T) {
	s, clock := newTestStore(t)

	id := s.Notify(model.Request{Message: "a"})
	before := s.Toasts()

	s.Remove("does-not-exist")
	s.Remove("")

	assert.Equal(t, before, s.Toasts())
	assert.Equal(t, 0, clock.Pending())
	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.False(t, rec.Exiting)
}

func TestStore_Remove_ExitingThenEvicted(t *testing.T) {
	s, clock := newTestStore(t)

	first := s.Notify(model.Request{Message: "first"})
	second := s.Notify(model.Request{Message: "second"})
	third := s.Notify(model.Request{Message: "third"})

	s.Remove(second)

	// Immediately: still present, flagged, order unchanged.
	toasts := s.Toasts()
	require.Equal(t, []string{first, second, third}, ids(toasts))
	assert.False(t, toasts[0].Exiting)
	assert.True(t, toasts[1].Exiting)
	assert.Equal(t, "second", toasts[1].Message)
	assert.False(t, toasts[2].Exiting)

	// Just before the delay elapses: still present.
	clock.Advance(store.ExitDelay - time.Millisecond)
	assert.Equal(t, []string{first, second, third}, ids(s.Toasts()))

	// After the delay: gone.
	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{first, third}, ids(s.Toasts()))
	_, ok := s.Get(second)
	assert.False(t, ok)
	assert.Equal(t, 0, s.PendingEvictions())
}

func TestStore_Remove_TwiceSchedulesOneEviction(t *testing.T) {
	s, clock := newTestStore(t)
	events := s.Subscribe()

	id := s.Notify(model.Request{Message: "double"})
	s.Remove(id)
	s.Remove(id)

	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, 1, s.PendingEvictions())

	clock.Advance(store.ExitDelay)
	assert.Equal(t, 0, s.Count())

	// Removing again after eviction is still a no-op.
	s.Remove(id)
	clock.Advance(store.ExitDelay)

	var types []store.ChangeType
	for len(events) > 0 {
		types = append(types, (<-events).Type)
	}
	assert.Equal(t, []store.ChangeType{
		store.ChangeTypeAdd,
		store.ChangeTypeExiting,
		store.ChangeTypeEvict,
	}, types)
}

func TestStore_Remove_Concurrent(t *testing.T) {
	s, clock := newTestStore(t)
	id := s.Notify(model.Request{Message: "race"})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Remove(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, clock.Pending())
	clock.Advance(store.ExitDelay)
	assert.Equal(t, 0, s.Count())
}

func TestStore_RemoveAll(t *testing.T) {
	s, clock := newTestStore(t)
	s.Notify(model.Request{Message: "a"})
	b := s.Notify(model.Request{Message: "b"})
	s.Remove(b)
	s.Notify(model.Request{Message: "c"})

	s.RemoveAll()
	for _, rec := range s.Toasts() {
		assert.True(t, rec.Exiting, rec.Message)
	}
	assert.Equal(t, 3, clock.Pending())

	clock.Advance(store.ExitDelay)
	assert.Equal(t, 0, s.Count())
}

func TestStore_Subscribe(t *testing.T) {
	s, clock := newTestStore(t)
	ch := s.Subscribe()

	id := s.Notify(model.Request{Message: "watched"})
	ev := <-ch
	assert.Equal(t, store.ChangeTypeAdd, ev.Type)
	assert.Equal(t, id, ev.ID)
	assert.Equal(t, "watched", ev.Record.Message)

	s.Remove(id)
	ev = <-ch
	assert.Equal(t, store.ChangeTypeExiting, ev.Type)
	assert.True(t, ev.Record.Exiting)

	clock.Advance(store.ExitDelay)
	ev = <-ch
	assert.Equal(t, store.ChangeTypeEvict, ev.Type)
	assert.Equal(t, id, ev.ID)

	s.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestStore_ChangeEventTimestamps(t *testing.T) {
	s, clock := newTestStore(t)
	start := clock.Now()
	ch := s.SubscribeAll()

	id := s.Notify(model.Request{Message: "timed"})
	clock.Advance(time.Second)
	s.Remove(id)
	clock.Advance(store.ExitDelay)

	want := []time.Time{start, start.Add(time.Second), start.Add(time.Second + store.ExitDelay)}
	for _, at := range want {
		ev := <-ch
		assert.Equal(t, at, ev.At, ev.Type.String())
	}
}

func TestStore_SubscribeAll_Burst(t *testing.T) {
	s, clock := newTestStore(t)
	lossy := s.Subscribe()
	all := s.SubscribeAll()

	const n = 100
	for i := range n {
		s.Notify(model.Request{Message: "burst", Duration: model.Millis(1000 + i)})
	}
	s.RemoveAll()
	clock.Advance(store.ExitDelay)
	require.Equal(t, 0, s.Count())

	counts := make(map[store.ChangeType]int)
	for range 3 * n {
		select {
		case ev := <-all:
			counts[ev.Type]++
		case <-time.After(time.Second):
			t.Fatalf("queued subscription stalled after %v", counts)
		}
	}
	assert.Equal(t, n, counts[store.ChangeTypeAdd])
	assert.Equal(t, n, counts[store.ChangeTypeExiting])
	assert.Equal(t, n, counts[store.ChangeTypeEvict])

	// The buffered subscription is capped and drops the rest.
	assert.Less(t, len(lossy), 3*n)
}

func TestStore_SubscribeAll_Order(t *testing.T) {
	s, _ := newTestStore(t)
	ch := s.SubscribeAll()

	var want []string
	for range 10 {
		want = append(want, s.Notify(model.Request{Message: "ordered"}))
	}

	var got []string
	for range want {
		got = append(got, (<-ch).ID)
	}
	assert.Equal(t, want, got)
}

func TestStore_SubscribeAll_CloseFlushes(t *testing.T) {
	s := store.New(store.WithClock(storetest.NewFakeClock(time.Now())))
	ch := s.SubscribeAll()

	s.Notify(model.Request{Message: "one"})
	s.Notify(model.Request{Message: "two"})
	require.NoError(t, s.Close())

	var got []string
	for ev := range ch {
		got = append(got, ev.Record.Message)
	}
	assert.Equal(t, []string{"one", "two"}, got)

	_, open := <-s.SubscribeAll()
	assert.False(t, open)
}

func TestStore_SubscribeAll_Unsubscribe(t *testing.T) {
	s, _ := newTestStore(t)
	ch := s.SubscribeAll()

	s.Notify(model.Request{Message: "dropped"})
	s.Unsubscribe(ch)

	assert.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Later changes are not delivered anywhere and do not block the store.
	s.Notify(model.Request{Message: "after"})
	assert.Equal(t, 2, s.Count())
}

func TestStore_Observer(t *testing.T) {
	var got []store.ChangeType
	s := store.New(store.WithObserver(func(ev store.ChangeEvent) {
		got = append(got, ev.Type)
	}))
	defer s.Close()

	id := s.Notify(model.Request{Message: "observed"})
	s.Remove(id)

	assert.Equal(t, []store.ChangeType{store.ChangeTypeAdd, store.ChangeTypeExiting}, got)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s, _ := newTestStore(t)
	s.Notify(model.Request{Message: "orig", Styles: &model.Styles{Width: 10}})

	snap := s.Toasts()
	snap[0].Message = "mutated"
	snap[0].Styles.Width = 99

	fresh := s.Toasts()
	assert.Equal(t, "orig", fresh[0].Message)
	assert.Equal(t, 10, fresh[0].Styles.Width)
}

func TestStore_Close(t *testing.T) {
	clock := storetest.NewFakeClock(time.Now())
	s := store.New(store.WithClock(clock))
	ch := s.Subscribe()

	id := s.Notify(model.Request{Message: "pending"})
	s.Remove(id)
	require.Equal(t, 1, clock.Pending())

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.Equal(t, 0, clock.Pending(), "close stops pending evictions")

	// Drain then observe the closed channel.
	for range ch {
	}

	clock.Advance(store.ExitDelay)
	assert.Equal(t, 0, s.Count())

	assert.Empty(t, s.Notify(model.Request{Message: "late"}))
	s.Remove(id)
	assert.Equal(t, 0, s.Count())

	// Close is idempotent.
	require.NoError(t, s.Close())

	// Subscribing to a closed store yields a closed channel.
	_, open := <-s.Subscribe()
	assert.False(t, open)
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "add", store.ChangeTypeAdd.String())
	assert.Equal(t, "exiting", store.ChangeTypeExiting.String())
	assert.Equal(t, "evict", store.ChangeTypeEvict.String())
	assert.Equal(t, "unknown", store.ChangeType(42).String())
}
