// Package settings stores the global wall preferences.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"videowall/internal/storage"
)

// DefaultBackgroundColor is the grid background used when none is configured.
const DefaultBackgroundColor = "#000000"

// ErrInvalidSettings is returned when an update carries an unusable value.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the recognized global options.
type Settings struct {
	EnableSubtitles bool   `json:"enableSubtitles"`
	BackgroundColor string `json:"backgroundColor"`
}

// Defaults returns the settings used when nothing valid is stored.
func Defaults() Settings {
	return Settings{EnableSubtitles: false, BackgroundColor: DefaultBackgroundColor}
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	EnableSubtitles *bool   `json:"enableSubtitles,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
}

var (
	hexColor  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	cssColor  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*(\([0-9a-zA-Z.,%/ +-]*\))?$`)
	maxColorN = 64
)

// ValidColor reports whether c looks like a CSS colour value.
func ValidColor(c string) bool {
	if c == "" || len(c) > maxColorN {
		return false
	}
	if strings.HasPrefix(c, "#") {
		return hexColor.MatchString(c)
	}
	return cssColor.MatchString(c)
}

// Repository holds the current settings and persists every change.
type Repository struct {
	mu      sync.RWMutex
	store   storage.Store
	log     *slog.Logger
	current Settings
}

// NewRepository loads settings from store, merged over Defaults. Missing or
// unreadable settings fall back to the defaults, which are persisted.
func NewRepository(ctx context.Context, store storage.Store, log *slog.Logger) *Repository {
	r := &Repository{store: store, log: log.With(slog.String("component", "settings")), current: Defaults()}

	b, err := store.Get(ctx, storage.KeySettings)
	if errors.Is(err, storage.ErrNotFound) {
		r.persistLocked(ctx)
		return r
	}
	if err != nil {
		r.log.Error("loading settings failed, using defaults", slog.String("error", err.Error()))
		r.persistLocked(ctx)
		return r
	}

	merged := Defaults()
	if err := json.Unmarshal(b, &merged); err != nil {
		r.log.Error("stored settings are corrupt, using defaults", slog.String("error", err.Error()))
		r.persistLocked(ctx)
		return r
	}
	if !ValidColor(merged.BackgroundColor) {
		merged.BackgroundColor = DefaultBackgroundColor
	}
	r.current = merged
	return r
}

// Get returns the current settings.
func (r *Repository) Get() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Update applies p and persists the result. It returns the new settings and
// whether anything changed.
func (r *Repository) Update(ctx context.Context, p Patch) (Settings, bool, error) {
	if p.BackgroundColor != nil {
		c := strings.TrimSpace(*p.BackgroundColor)
		if !ValidColor(c) {
			return Settings{}, false, fmt.Errorf("%w: background color %q", ErrInvalidSettings, *p.BackgroundColor)
		}
		p.BackgroundColor = &c
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.current
	if p.EnableSubtitles != nil {
		next.EnableSubtitles = *p.EnableSubtitles
	}
	if p.BackgroundColor != nil {
		next.BackgroundColor = *p.BackgroundColor
	}
	if next == r.current {
		return next, false, nil
	}
	r.current = next
	r.persistLocked(ctx)
	return next, true, nil
}

func (r *Repository) persistLocked(ctx context.Context) {
	b, err := json.Marshal(r.current)
	if err != nil {
		r.log.Error("encoding settings failed", slog.String("error", err.Error()))
		return
	}
	if err := r.store.Set(ctx, storage.KeySettings, b); err != nil {
		r.log.Warn("saving settings failed", slog.String("error", err.Error()))
	}
}
