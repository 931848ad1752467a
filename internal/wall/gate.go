package wall

import "videowall/internal/catalog"

// PendingRequest is an embedded player construction waiting for the
// service's global readiness signal.
type PendingRequest struct {
	InstanceID InstanceID
	VideoID    string
	MountID    string
	StreamID   catalog.StreamID
}

type gateState int

const (
	gateNotReady gateState = iota
	gateReady
)

// Gate holds embedded player requests until the one-time readiness signal.
// It moves from not ready to ready exactly once; after that every request is
// built immediately.
type Gate struct {
	state gateState
	queue []PendingRequest
	build func(PendingRequest)
}

// NewGate returns a not-ready gate that hands requests to build.
func NewGate(build func(PendingRequest)) *Gate {
	return &Gate{build: build}
}

// Submit builds req now if the gate is ready, otherwise queues it. It reports
// whether req was built immediately.
func (g *Gate) Submit(req PendingRequest) bool {
	if g.state == gateReady {
		g.build(req)
		return true
	}
	g.queue = append(g.queue, req)
	return false
}

// Fire opens the gate and builds the queued requests in arrival order. Only
// the first call does anything; it returns the number of requests drained.
func (g *Gate) Fire() int {
	if g.state == gateReady {
		return 0
	}
	g.state = gateReady
	queued := g.queue
	g.queue = nil
	for _, req := range queued {
		g.build(req)
	}
	return len(queued)
}

// Cancel drops a queued request for id. It reports whether one was queued.
func (g *Gate) Cancel(id InstanceID) bool {
	for i, req := range g.queue {
		if req.InstanceID == id {
			g.queue = append(g.queue[:i], g.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Ready reports whether the readiness signal has fired.
func (g *Gate) Ready() bool {
	return g.state == gateReady
}

// Pending returns a copy of the queued requests.
func (g *Gate) Pending() []PendingRequest {
	out := make([]PendingRequest, len(g.queue))
	copy(out, g.queue)
	return out
}
