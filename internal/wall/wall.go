// Package wall coordinates a grid of live video tiles: which players exist,
// which single one is audible, where the tiles sit and whether subtitles are
// shown. A Wall is not safe for concurrent use; every call, including timer
// continuations, must come from the goroutine that owns it.
package wall

import (
	"context"
	"log/slog"
	"time"

	"videowall/internal/catalog"
	"videowall/internal/player"
)

// InitialSubtitleDelay is how long after Start the subtitle flag is pushed to
// every tile once more, for players that became ready without signalling.
const InitialSubtitleDelay = 500 * time.Millisecond

// Config carries the collaborators of a Wall.
type Config struct {
	Surface   Surface
	Backend   player.Backend
	Catalog   Catalog
	Layout    LayoutStore
	Scheduler player.Scheduler
	Recorder  Recorder
	Log       *slog.Logger

	SubtitlesEnabled    bool
	SubtitleLanguages   []string
	SubtitleSettleDelay time.Duration

	// NewID overrides instance id generation.
	NewID func() InstanceID
}

// Wall is the entry point the transport drives.
type Wall struct {
	*Manager
	closed bool
}

// New assembles a wall. Nothing is mounted until Start.
func New(cfg Config) *Wall {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	newID := cfg.NewID
	if newID == nil {
		newID = newInstanceID
	}

	reg := NewRegistry()
	m := &Manager{
		surface:     cfg.Surface,
		backend:     cfg.Backend,
		catalog:     cfg.Catalog,
		layout:      cfg.Layout,
		sched:       cfg.Scheduler,
		rec:         rec,
		log:         log,
		languages:   cfg.SubtitleLanguages,
		settleDelay: cfg.SubtitleSettleDelay,
		newID:       newID,
		reg:         reg,
		focus:       NewFocus(reg, cfg.Surface, rec, log),
		subs:        NewSubtitles(reg, cfg.SubtitlesEnabled),
		tiles:       make(map[InstanceID]*tile),
		byWrapper:   make(map[string]InstanceID),
	}
	m.gate = NewGate(m.buildEmbed)
	m.order = NewOrderTracker(cfg.Surface, m.streamFor, cfg.Layout, log)
	return &Wall{Manager: m}
}

// Start restores the layout and schedules the one-time subtitle pass.
func (w *Wall) Start(ctx context.Context) {
	w.Manager.Start(ctx)
	w.sched.AfterFunc(InitialSubtitleDelay, func() {
		if !w.closed {
			w.subs.ApplyAll()
		}
	})
}

// Registry exposes the live adapters.
func (w *Wall) Registry() *Registry { return w.reg }

// Gate exposes the embedded service readiness gate.
func (w *Wall) Gate() *Gate { return w.gate }

// Focus exposes the audio focus controller.
func (w *Wall) Focus() *Focus { return w.focus }

// Order exposes the layout order tracker.
func (w *Wall) Order() *OrderTracker { return w.order }

// Subtitles exposes the subtitle reconciler.
func (w *Wall) Subtitles() *Subtitles { return w.subs }

// SelectStream adds a tile for a catalog stream. It reports false for an
// unknown id.
func (w *Wall) SelectStream(ctx context.Context, id catalog.StreamID) (InstanceID, bool) {
	s, ok := w.catalog.Get(id)
	if !ok {
		w.log.Warn("select of unknown stream", slog.String("stream_id", string(id)))
		return "", false
	}
	return w.CreateTile(ctx, s), true
}

// EmbedServiceReady is the embedded service's global readiness signal.
func (w *Wall) EmbedServiceReady() {
	if n := w.gate.Fire(); n > 0 {
		w.rec.GateDrained(n)
		w.log.Info("embedded players released", slog.Int("count", n))
	}
}

// Click forwards a single click on a tile.
func (w *Wall) Click(id InstanceID) { w.focus.Click(id) }

// DoubleClick forwards a double click on a tile.
func (w *Wall) DoubleClick(id InstanceID) { w.focus.DoubleClick(id) }

// FullscreenChanged is called after the surface's fullscreen element changed.
func (w *Wall) FullscreenChanged() {
	if _, fs := w.surface.FullscreenElement(); !fs {
		w.focus.FullscreenExited()
	}
}

// MuteChanged is called after the renderer reported a mute change on the
// player at mountID.
func (w *Wall) MuteChanged(mountID string) {
	if id, ok := w.instanceForMount(mountID); ok {
		w.focus.MuteChanged(id)
	}
}

// SetSubtitles changes the global subtitle flag.
func (w *Wall) SetSubtitles(enabled bool) { w.subs.SetEnabled(enabled) }

// Close destroys every player. The wall is unusable afterwards.
func (w *Wall) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.Manager.close()
}
