package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/store"
	"github.com/jmylchreest/toastui/internal/store/storetest"
	"github.com/jmylchreest/toastui/internal/toast"
)

func mount(t *testing.T) (context.Context, *Provider, *storetest.FakeClock) {
	t.Helper()
	clock := storetest.NewFakeClock(time.Now())
	ctx, p, err := Mount(context.Background(), nil, store.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Unmount() })
	return ctx, p, clock
}

func TestUse_OutsideProvider(t *testing.T) {
	h, err := Use(context.Background())
	assert.ErrorIs(t, err, ErrOutsideProvider)
	assert.Nil(t, h)

	_, err = Use(nil)
	assert.ErrorIs(t, err, ErrOutsideProvider)

	assert.PanicsWithError(t, ErrOutsideProvider.Error(), func() {
		MustUse(context.Background())
	})
}

func TestErrors_Distinguishable(t *testing.T) {
	assert.NotErrorIs(t, ErrOutsideProvider, toast.ErrNotReady)
	assert.NotEqual(t, ErrOutsideProvider.Error(), toast.ErrNotReady.Error())
}

func TestUse_InsideProvider(t *testing.T) {
	ctx, _, _ := mount(t)

	type childKey struct{}
	child := context.WithValue(ctx, childKey{}, "nested component")

	h, err := Use(child)
	require.NoError(t, err)

	id := h.Notify(model.Request{Message: "from the tree"})
	toasts := h.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, id, toasts[0].ID)
}

func TestMount_Nested(t *testing.T) {
	ctx, _, _ := mount(t)

	_, p, err := Mount(ctx, nil)
	assert.ErrorIs(t, err, ErrNestedProvider)
	assert.Nil(t, p)
}

func TestMount_SecondProviderRejected(t *testing.T) {
	mount(t)

	_, p, err := Mount(context.Background(), nil)
	assert.ErrorIs(t, err, toast.ErrAlreadyBound)
	assert.Nil(t, p)
}

func TestFacade_BeforeAndAfterMount(t *testing.T) {
	_, err := toast.Notify(model.Request{Message: "early"})
	require.ErrorIs(t, err, toast.ErrNotReady)

	ctx, _, _ := mount(t)
	h := MustUse(ctx)

	id, err := toast.Notify(model.Request{Message: "late", Type: model.TypeInfo})
	require.NoError(t, err)

	toasts := h.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, id, toasts[0].ID)
	assert.Equal(t, model.TypeInfo, toasts[0].Type)

	require.NoError(t, toast.Remove(id))
	assert.True(t, h.Toasts()[0].Exiting)
}

func TestHandle_ChangesOnEveryMutation(t *testing.T) {
	ctx, _, clock := mount(t)
	h := MustUse(ctx)
	changes := h.Changes()
	defer h.StopChanges(changes)

	id := h.Notify(model.Request{Message: "watched"})
	h.Remove(id)
	clock.Advance(store.ExitDelay)

	var got []store.ChangeType
	for range 3 {
		got = append(got, (<-changes).Type)
	}
	assert.Equal(t, []store.ChangeType{
		store.ChangeTypeAdd,
		store.ChangeTypeExiting,
		store.ChangeTypeEvict,
	}, got)
	assert.Empty(t, h.Toasts())
}

func TestHandle_Groups(t *testing.T) {
	ctx, _, _ := mount(t)
	h := MustUse(ctx)

	a := h.Notify(model.Request{Message: "a"})
	b := h.Notify(model.Request{Message: "b", Position: model.PositionTopLeft})
	c := h.Notify(model.Request{Message: "c", Position: model.PositionTopRight})

	groups := h.Groups()
	require.Len(t, groups[model.PositionTopRight], 2)
	assert.Equal(t, a, groups[model.PositionTopRight][0].ID)
	assert.Equal(t, c, groups[model.PositionTopRight][1].ID)
	require.Len(t, groups[model.PositionTopLeft], 1)
	assert.Equal(t, b, groups[model.PositionTopLeft][0].ID)
}

func TestHandle_Snapshot(t *testing.T) {
	ctx, _, _ := mount(t)
	h := MustUse(ctx)

	a := h.Notify(model.Request{Message: "a", Position: model.PositionBottomCenter})
	b := h.Notify(model.Request{Message: "b"})
	h.Remove(a)

	snap := h.Snapshot()
	require.Len(t, snap.Toasts, 2)
	assert.Equal(t, snap.Groups.Len(), len(snap.Toasts))
	assert.Equal(t, []model.Position{model.PositionTopRight, model.PositionBottomCenter}, snap.Groups.Anchors())
	assert.True(t, snap.Groups[model.PositionBottomCenter][0].Exiting)
	assert.Equal(t, b, snap.Groups[model.PositionTopRight][0].ID)
}

func TestHandle_AllChanges(t *testing.T) {
	ctx, _, _ := mount(t)
	h := MustUse(ctx)
	ch := h.AllChanges()

	for range 100 {
		h.Notify(model.Request{Message: "many"})
	}
	for range 100 {
		ev := <-ch
		assert.Equal(t, store.ChangeTypeAdd, ev.Type)
	}

	h.StopChanges(ch)
	for range ch {
	}
}

func TestUnmount(t *testing.T) {
	clock := storetest.NewFakeClock(time.Now())
	ctx, p, err := Mount(context.Background(), nil, store.WithClock(clock))
	require.NoError(t, err)

	h := MustUse(ctx)
	id := h.Notify(model.Request{Message: "in flight"})
	h.Remove(id)
	require.Equal(t, 1, clock.Pending())

	require.NoError(t, p.Unmount())
	assert.False(t, p.Mounted())
	assert.Equal(t, 0, clock.Pending(), "pending evictions are cancelled")

	// The facade fails loudly instead of calling into the dead store.
	_, err = toast.Notify(model.Request{Message: "after unmount"})
	assert.ErrorIs(t, err, toast.ErrNotReady)

	_, err = Use(ctx)
	assert.ErrorIs(t, err, ErrOutsideProvider)

	require.NoError(t, p.Unmount())

	// A new provider rebinds the facade.
	ctx2, p2, err := Mount(context.Background(), nil)
	require.NoError(t, err)
	defer p2.Unmount()

	id2, err := toast.Notify(model.Request{Message: "rebound"})
	require.NoError(t, err)
	toasts := MustUse(ctx2).Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, id2, toasts[0].ID)
}
