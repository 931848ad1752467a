package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"videowall/internal/catalog"
	"videowall/internal/storage"
)

// ErrInvalidWall is returned for a wall name that cannot be used as a key.
var ErrInvalidWall = errors.New("layout: invalid wall name")

var wallName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Store persists the presentation order of tiles as a list of stream ids.
// Each named wall keeps its own order.
type Store struct {
	kv  storage.Store
	key string
}

// NewStore returns the store of the default wall over kv.
func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv, key: storage.KeyLayout}
}

// ForWall returns the store of the named wall. The empty name is the
// default wall.
func (s *Store) ForWall(name string) (*Store, error) {
	if name == "" {
		return &Store{kv: s.kv, key: storage.KeyLayout}, nil
	}
	if !wallName.MatchString(name) {
		return nil, fmt.Errorf("%w %q", ErrInvalidWall, name)
	}
	return &Store{kv: s.kv, key: storage.KeyLayout + "-" + name}, nil
}

// LoadOrder returns the saved order. ok is false when nothing has been saved.
func (s *Store) LoadOrder(ctx context.Context) (order []catalog.StreamID, ok bool, err error) {
	b, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(b, &order); err != nil {
		return nil, false, fmt.Errorf("decode layout: %w", err)
	}
	return order, true, nil
}

// SaveOrder replaces the saved order.
func (s *Store) SaveOrder(ctx context.Context, order []catalog.StreamID) error {
	if order == nil {
		order = []catalog.StreamID{}
	}
	b, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return s.kv.Set(ctx, s.key, b)
}
