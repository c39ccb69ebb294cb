package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/provider"
	"github.com/jmylchreest/toastui/internal/toast"
)

type recordingSink struct {
	mu       sync.Mutex
	requests []model.Request
	removed  []string
	err      error
}

func (r *recordingSink) Notify(req model.Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.requests = append(r.requests, req)
	return fmt.Sprintf("id-%d", len(r.requests)), nil
}

func (r *recordingSink) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, id)
	return nil
}

func TestFeed(t *testing.T) {
	feed := strings.Join([]string{
		`{"message":"saved","type":"success"}`,
		``,
		`# comment`,
		`{"message":"disk low","type":"warning","position":"bottom-left","duration":5000}`,
		`{"message":"line\u0007break"}`,
	}, "\n")

	sink := &recordingSink{}
	require.NoError(t, Feed(context.Background(), strings.NewReader(feed), sink, nil))

	require.Len(t, sink.requests, 3)
	assert.Equal(t, model.TypeSuccess, sink.requests[0].Type)
	assert.Equal(t, model.PositionBottomLeft, sink.requests[1].Position)
	require.NotNil(t, sink.requests[1].Duration)
	assert.Equal(t, 5000, *sink.requests[1].Duration)
	assert.Equal(t, "line break", sink.requests[2].Message)
}

func TestFeed_BadLinesReported(t *testing.T) {
	feed := strings.Join([]string{
		`{"message":"first"}`,
		`not json`,
		`{"message":""}`,
		`{"message":"x","type":"fatal"}`,
		`{"message":"x","colour":"red"}`,
		`{"message":"last"}`,
	}, "\n")

	sink := &recordingSink{}
	err := Feed(context.Background(), strings.NewReader(feed), sink, nil)
	require.Error(t, err)

	require.Len(t, sink.requests, 2)
	assert.Equal(t, "last", sink.requests[1].Message)

	var fe *FeedError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Line)

	assert.ErrorIs(t, err, model.ErrEmptyMessage)
	assert.ErrorIs(t, err, model.ErrInvalidType)
	assert.Contains(t, err.Error(), "feed line 5")
}

func TestFeed_SinkErrors(t *testing.T) {
	sink := &recordingSink{err: toast.ErrNotReady}
	err := Feed(context.Background(), strings.NewReader(`{"message":"early"}`), sink, nil)
	assert.ErrorIs(t, err, toast.ErrNotReady)
}

func TestFeed_ContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sink := &recordingSink{}

	done := make(chan error, 1)
	go func() { done <- Feed(ctx, pr, sink, nil) }()

	_, err := pw.Write([]byte("{\"message\":\"streamed\"}\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.requests) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("feed did not stop on cancel")
	}
}

func TestFeed_ThroughFacade(t *testing.T) {
	ctx, p, err := provider.Mount(context.Background(), nil)
	require.NoError(t, err)
	defer p.Unmount()

	require.NoError(t, Feed(ctx, strings.NewReader(`{"message":"via facade","type":"info"}`), nil, nil))

	toasts := provider.MustUse(ctx).Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "via facade", toasts[0].Message)
	assert.Equal(t, model.TypeInfo, toasts[0].Type)
}

func TestParseRequest_TriStateBools(t *testing.T) {
	req, err := ParseRequest([]byte(`{"message":"m","progress_bar":false}`))
	require.NoError(t, err)
	require.NotNil(t, req.ProgressBar)
	assert.False(t, *req.ProgressBar)
	assert.Nil(t, req.ShowIcon)
}
