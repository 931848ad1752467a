package wall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_queuesUntilFire(t *testing.T) {
	var built []InstanceID
	g := NewGate(func(r PendingRequest) { built = append(built, r.InstanceID) })

	assert.False(t, g.Submit(PendingRequest{InstanceID: "p1"}))
	assert.False(t, g.Submit(PendingRequest{InstanceID: "p2"}))
	assert.False(t, g.Submit(PendingRequest{InstanceID: "p3"}))
	assert.Empty(t, built)
	assert.Len(t, g.Pending(), 3)
	assert.False(t, g.Ready())

	require.Equal(t, 3, g.Fire())
	assert.Equal(t, []InstanceID{"p1", "p2", "p3"}, built)
	assert.True(t, g.Ready())
	assert.Empty(t, g.Pending())

	assert.Equal(t, 0, g.Fire(), "second signal drains nothing")
	assert.Len(t, built, 3)
}

func TestGate_readySubmitBuildsImmediately(t *testing.T) {
	var built []InstanceID
	g := NewGate(func(r PendingRequest) { built = append(built, r.InstanceID) })
	g.Fire()

	assert.True(t, g.Submit(PendingRequest{InstanceID: "p1"}))
	assert.Equal(t, []InstanceID{"p1"}, built)
	assert.Empty(t, g.Pending())
}

func TestGate_cancel(t *testing.T) {
	var built []InstanceID
	g := NewGate(func(r PendingRequest) { built = append(built, r.InstanceID) })
	g.Submit(PendingRequest{InstanceID: "p1"})
	g.Submit(PendingRequest{InstanceID: "p2"})

	assert.True(t, g.Cancel("p1"))
	assert.False(t, g.Cancel("p1"))
	g.Fire()
	assert.Equal(t, []InstanceID{"p2"}, built)
}

func TestGate_pendingIsCopy(t *testing.T) {
	g := NewGate(func(PendingRequest) {})
	g.Submit(PendingRequest{InstanceID: "p1", VideoID: "aqz-KE-bpKQ"})
	p := g.Pending()
	p[0].VideoID = "changed"
	assert.Equal(t, "aqz-KE-bpKQ", g.Pending()[0].VideoID)
}
