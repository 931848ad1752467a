package wall

import (
	"errors"
	"fmt"

	"videowall/internal/catalog"
	"videowall/internal/player"
)

// ErrDuplicateInstance is returned by Registry.Add for an id already present.
var ErrDuplicateInstance = errors.New("instance already registered")

// Entry is a registered tile with a live adapter.
type Entry struct {
	ID        InstanceID
	StreamID  catalog.StreamID
	Kind      catalog.MediaKind
	WrapperID string
	MountID   string
	Adapter   player.Adapter
}

// Registry owns the live adapters of a wall, keyed by instance id. Every entry
// holds exactly one adapter; Release tears the adapter down before the entry
// goes away.
type Registry struct {
	entries map[InstanceID]*Entry
	order   []InstanceID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[InstanceID]*Entry)}
}

// Add inserts e.
func (r *Registry) Add(e *Entry) error {
	if e.Adapter == nil {
		return fmt.Errorf("register %s: no adapter", e.ID)
	}
	if _, exists := r.entries[e.ID]; exists {
		return fmt.Errorf("register %s: %w", e.ID, ErrDuplicateInstance)
	}
	r.entries[e.ID] = e
	r.order = append(r.order, e.ID)
	return nil
}

// Get returns the entry for id.
func (r *Registry) Get(id InstanceID) (*Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Release destroys the adapter of id and removes the entry. It reports
// whether an entry existed.
func (r *Registry) Release(id InstanceID) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.Adapter.Destroy()
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Each calls fn for every entry in creation order. fn may release entries.
func (r *Registry) Each(fn func(e *Entry)) {
	ids := make([]InstanceID, len(r.order))
	copy(ids, r.order)
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			fn(e)
		}
	}
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Audible returns the ids whose adapter is not muted.
func (r *Registry) Audible() []InstanceID {
	var out []InstanceID
	r.Each(func(e *Entry) {
		if !e.Adapter.IsMuted() {
			out = append(out, e.ID)
		}
	})
	return out
}
