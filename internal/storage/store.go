// Package storage holds the key/value persistence used by the catalog, layout
// and settings repositories. Each key stores one JSON document.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Keys used by the repositories.
const (
	KeyStreams  = "streams"
	KeySettings = "settings"
	KeyLayout   = "layout"
)

// Store is the persistence abstraction for wall state.
// Implementations can be file-based or remote.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
