package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"videowall/internal/storage"

	"github.com/google/uuid"
)

var (
	// ErrStreamNotFound is returned when an operation names an unknown stream id.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrInvalidStream is returned when a stream definition fails validation.
	ErrInvalidStream = errors.New("invalid stream")
)

// Repository is a concurrency-safe catalog of stream definitions.
// Reads are served from memory; every write is persisted immediately to the
// underlying storage.Store.
type Repository struct {
	mu      sync.RWMutex
	store   storage.Store
	log     *slog.Logger
	streams []Stream
}

// NewRepository loads the catalog from store. A missing catalog is replaced by
// DefaultStreams and persisted; an unreadable one is replaced by the defaults and
// re-persisted. NewRepository never fails.
func NewRepository(ctx context.Context, store storage.Store, log *slog.Logger) *Repository {
	r := &Repository{store: store, log: log.With(slog.String("component", "catalog"))}
	r.load(ctx)
	return r
}

func (r *Repository) load(ctx context.Context) {
	b, err := r.store.Get(ctx, storage.KeyStreams)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		r.streams = DefaultStreams()
		r.persistLocked(ctx)
		return
	case err != nil:
		r.log.Error("loading streams failed, using defaults", slog.String("error", err.Error()))
		r.streams = DefaultStreams()
		r.persistLocked(ctx)
		return
	}

	var stored []Stream
	if err := json.Unmarshal(b, &stored); err != nil {
		r.log.Error("stored streams are corrupt, using defaults", slog.String("error", err.Error()))
		r.streams = DefaultStreams()
		r.persistLocked(ctx)
		return
	}

	repaired := false
	seen := make(map[StreamID]bool, len(stored))
	for i := range stored {
		if stored[i].ID == "" || seen[stored[i].ID] {
			stored[i].ID = newStreamID()
			repaired = true
		}
		seen[stored[i].ID] = true
	}
	r.streams = stored
	if repaired {
		r.persistLocked(ctx)
	}
}

func newStreamID() StreamID {
	return StreamID("stream-" + uuid.NewString())
}

// List returns a copy of all streams in catalog order.
func (r *Repository) List() []Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Stream, len(r.streams))
	copy(out, r.streams)
	return out
}

// Get returns the stream with the given id.
func (r *Repository) Get(id StreamID) (Stream, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexLocked(id); i >= 0 {
		return r.streams[i], true
	}
	return Stream{}, false
}

// AutoLoad returns the streams flagged for automatic loading, in catalog order.
func (r *Repository) AutoLoad() []Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Stream
	for _, s := range r.streams {
		if s.AutoLoad {
			out = append(out, s)
		}
	}
	return out
}

// Add validates in and appends a new stream with a generated id.
func (r *Repository) Add(ctx context.Context, in StreamInput) (Stream, error) {
	if err := in.Validate(); err != nil {
		return Stream{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stream{ID: newStreamID(), Name: in.Name, Kind: in.Kind, URL: in.URL, AutoLoad: in.AutoLoad}
	r.streams = append(r.streams, s)
	r.persistLocked(ctx)
	return s, nil
}

// Update replaces the editable fields of an existing stream. The id is kept.
func (r *Repository) Update(ctx context.Context, id StreamID, in StreamInput) (Stream, error) {
	if err := in.Validate(); err != nil {
		return Stream{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return Stream{}, fmt.Errorf("update %s: %w", id, ErrStreamNotFound)
	}
	r.streams[i] = Stream{ID: id, Name: in.Name, Kind: in.Kind, URL: in.URL, AutoLoad: in.AutoLoad}
	r.persistLocked(ctx)
	return r.streams[i], nil
}

// Delete removes a stream. Saved layouts referencing it are not touched; they
// skip the id when restored.
func (r *Repository) Delete(ctx context.Context, id StreamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrStreamNotFound)
	}
	r.streams = append(r.streams[:i], r.streams[i+1:]...)
	r.persistLocked(ctx)
	return nil
}

// SetAutoLoad sets the automatic loading flag of a stream.
func (r *Repository) SetAutoLoad(ctx context.Context, id StreamID, autoLoad bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("set autoload %s: %w", id, ErrStreamNotFound)
	}
	if r.streams[i].AutoLoad == autoLoad {
		return nil
	}
	r.streams[i].AutoLoad = autoLoad
	r.persistLocked(ctx)
	return nil
}

// indexLocked returns the position of id or -1. Caller must hold r.mu.
func (r *Repository) indexLocked(id StreamID) int {
	for i := range r.streams {
		if r.streams[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the catalog. Failures are logged and the in-memory
// state stays authoritative. Caller must hold r.mu in write mode (or be the
// constructor).
func (r *Repository) persistLocked(ctx context.Context) {
	b, err := json.Marshal(r.streams)
	if err != nil {
		r.log.Error("encoding streams failed", slog.String("error", err.Error()))
		return
	}
	if err := r.store.Set(ctx, storage.KeyStreams, b); err != nil {
		r.log.Warn("saving streams failed", slog.String("error", err.Error()))
	}
}
