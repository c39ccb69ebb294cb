package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/toastui/internal/model"
)

// A timer that already fired when Close ran must not touch the torn-down store.
func TestStore_EvictAfterCloseIgnored(t *testing.T) {
	s := New()
	ch := s.Subscribe()

	id := s.Notify(model.Request{Message: "late timer"})
	<-ch
	epoch := s.epoch

	_ = s.Close()
	s.evict(id, epoch)

	assert.Equal(t, 0, s.Count())
	_, open := <-ch
	assert.False(t, open)
}

// A timer scheduled before a generation change is stale even if the store is open.
func TestStore_EvictStaleEpochIgnored(t *testing.T) {
	s := New()
	defer s.Close()

	id := s.Notify(model.Request{Message: "stale"})
	s.evict(id, s.epoch+1)

	assert.Equal(t, 1, s.Count())
}
