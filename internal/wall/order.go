package wall

import (
	"context"
	"log/slog"

	"videowall/internal/catalog"
)

// OrderSaver persists the stream id sequence of a wall.
type OrderSaver interface {
	SaveOrder(ctx context.Context, ids []catalog.StreamID) error
}

// OrderTracker turns the surface's presentation order into stream ids.
type OrderTracker struct {
	surface Surface
	lookup  func(wrapperID string) (catalog.StreamID, bool)
	store   OrderSaver
	log     *slog.Logger
}

// NewOrderTracker maps wrapper ids through lookup.
func NewOrderTracker(surface Surface, lookup func(string) (catalog.StreamID, bool), store OrderSaver, log *slog.Logger) *OrderTracker {
	return &OrderTracker{surface: surface, lookup: lookup, store: store, log: log}
}

// Snapshot returns the stream ids of the present tiles in presentation order.
// Wrappers the wall does not know are skipped.
func (t *OrderTracker) Snapshot() []catalog.StreamID {
	wrappers := t.surface.TileOrder()
	ids := make([]catalog.StreamID, 0, len(wrappers))
	for _, w := range wrappers {
		id, ok := t.lookup(w)
		if !ok {
			t.log.Warn("unknown tile in presentation order", slog.String("wrapper_id", w))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Persist saves the current snapshot. A storage failure is logged; the wall
// keeps running.
func (t *OrderTracker) Persist(ctx context.Context) {
	ids := t.Snapshot()
	if err := t.store.SaveOrder(ctx, ids); err != nil {
		t.log.Error("failed to save layout", slog.Int("tiles", len(ids)), slog.String("error", err.Error()))
	}
}
