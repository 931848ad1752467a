package wall

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"videowall/internal/catalog"
	"videowall/internal/platform/logger"
)

func TestOrderTracker_snapshotSkipsUnknownWrappers(t *testing.T) {
	s := newFakeSurface()
	s.order = []string{"w2", "w-unknown", "w1"}
	known := map[string]catalog.StreamID{"w1": "one", "w2": "two"}
	lookup := func(w string) (catalog.StreamID, bool) {
		id, ok := known[w]
		return id, ok
	}
	store := &memLayout{}
	tr := NewOrderTracker(s, lookup, store, logger.Discard())

	assert.Equal(t, []catalog.StreamID{"two", "one"}, tr.Snapshot())

	tr.Persist(context.Background())
	assert.Equal(t, []catalog.StreamID{"two", "one"}, store.order)
}

func TestOrderTracker_emptyWall(t *testing.T) {
	store := &memLayout{}
	tr := NewOrderTracker(newFakeSurface(), func(string) (catalog.StreamID, bool) { return "", false }, store, logger.Discard())

	tr.Persist(context.Background())
	assert.True(t, store.saved)
	assert.Empty(t, store.order)
	assert.NotNil(t, tr.Snapshot())
}

func TestOrderTracker_storageErrorDoesNotPanic(t *testing.T) {
	store := &memLayout{saveErr: errors.New("read-only")}
	tr := NewOrderTracker(newFakeSurface(), func(string) (catalog.StreamID, bool) { return "", false }, store, logger.Discard())

	assert.NotPanics(t, func() { tr.Persist(context.Background()) })
	assert.Equal(t, 1, store.saves)
}
