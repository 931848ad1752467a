package wall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"videowall/internal/catalog"
	"videowall/internal/layout"
	"videowall/internal/player"
)

// TileState is the lifecycle position of a tile.
type TileState string

const (
	// TileRequested: mounted on the surface, player not constructed yet.
	TileRequested TileState = "requested"
	TileMounted   TileState = "mounted"
	// TileFailed: the player was refused or lost; an inline error is shown.
	TileFailed TileState = "failed"
)

// Tile is a snapshot of one tile for callers outside the loop.
type Tile struct {
	InstanceID InstanceID        `json:"instance_id"`
	StreamID   catalog.StreamID  `json:"stream_id"`
	Name       string            `json:"name"`
	Kind       catalog.MediaKind `json:"type"`
	State      TileState         `json:"state"`
	Error      string            `json:"error,omitempty"`
	Muted      bool              `json:"muted"`
}

type tile struct {
	id        InstanceID
	stream    catalog.Stream
	wrapperID string
	mountID   string
	state     TileState
	errMsg    string
}

// Catalog resolves stream ids to definitions.
type Catalog interface {
	Get(id catalog.StreamID) (catalog.Stream, bool)
	AutoLoad() []catalog.Stream
}

// LayoutStore persists the wall's stream order.
type LayoutStore interface {
	OrderSaver
	LoadOrder(ctx context.Context) ([]catalog.StreamID, bool, error)
}

// Manager creates and destroys tiles. It owns the registry, the embedded
// service readiness gate and the surface placement of every tile, including
// tiles that only show an error.
type Manager struct {
	surface     Surface
	backend     player.Backend
	catalog     Catalog
	layout      LayoutStore
	sched       player.Scheduler
	rec         Recorder
	log         *slog.Logger
	languages   []string
	settleDelay time.Duration
	newID       func() InstanceID

	reg   *Registry
	gate  *Gate
	focus *Focus
	subs  *Subtitles
	order *OrderTracker

	tiles     map[InstanceID]*tile
	byWrapper map[string]InstanceID
	portrait  bool
	restoring bool
}

func newInstanceID() InstanceID {
	return InstanceID("player-" + uuid.NewString())
}

// CreateTile mounts a tile for s and starts its player. Streaming tiles are
// built at once; embedded tiles wait for the readiness gate. A locator or
// kind the wall cannot play yields an inline error tile.
func (m *Manager) CreateTile(ctx context.Context, s catalog.Stream) InstanceID {
	id := m.newID()
	t := &tile{
		id:        id,
		stream:    s,
		wrapperID: string(id) + "-wrapper",
		mountID:   string(id),
		state:     TileRequested,
	}
	m.tiles[id] = t
	m.byWrapper[t.wrapperID] = id
	m.surface.MountTile(Mount{
		InstanceID: id,
		WrapperID:  t.wrapperID,
		MountID:    t.mountID,
		StreamID:   s.ID,
		Label:      s.Name,
		Kind:       s.Kind,
	})
	m.rec.TileMounted(string(s.Kind))

	switch s.Kind {
	case catalog.KindHLS:
		m.buildStream(t)
	case catalog.KindYouTube:
		videoID, err := player.ParseVideoID(s.URL)
		if err != nil {
			m.log.Warn("no video id in locator",
				slog.String("stream_id", string(s.ID)),
				slog.String("url", s.URL))
			m.fail(t, fmt.Sprintf("Invalid YouTube URL: %s", s.Name))
			break
		}
		m.gate.Submit(PendingRequest{InstanceID: id, VideoID: videoID, MountID: t.mountID, StreamID: s.ID})
	default:
		m.fail(t, fmt.Sprintf("Unsupported stream type %q: %s", s.Kind, s.Name))
	}

	m.structureChanged(ctx)
	return id
}

func (m *Manager) buildStream(t *tile) {
	a, err := player.NewStream(m.backend, player.StreamConfig{
		MountID: t.mountID,
		URL:     t.stream.URL,
		Hooks:   m.hooksFor(t.id),
		Log:     m.log.With(slog.String("instance_id", string(t.id))),
	})
	if err != nil {
		msg := fmt.Sprintf("Could not start %s", t.stream.Name)
		if errors.Is(err, player.ErrUnsupported) {
			msg = fmt.Sprintf("HLS not supported: %s", t.stream.Name)
		}
		m.log.Warn("stream player refused", slog.String("instance_id", string(t.id)), slog.String("error", err.Error()))
		m.fail(t, msg)
		return
	}
	m.register(t, a)
}

// buildEmbed runs when the gate hands over a request.
func (m *Manager) buildEmbed(req PendingRequest) {
	t, ok := m.tiles[req.InstanceID]
	if !ok || t.state != TileRequested {
		m.log.Debug("dropping embedded request for removed tile", slog.String("instance_id", string(req.InstanceID)))
		return
	}
	a, err := player.NewEmbed(m.backend, player.EmbedConfig{
		MountID:     req.MountID,
		VideoID:     req.VideoID,
		Languages:   m.languages,
		SettleDelay: m.settleDelay,
		Scheduler:   m.sched,
		Hooks:       m.hooksFor(t.id),
		Log:         m.log.With(slog.String("instance_id", string(t.id))),
	})
	if err != nil {
		m.log.Warn("embedded player refused", slog.String("instance_id", string(t.id)), slog.String("error", err.Error()))
		m.fail(t, fmt.Sprintf("Could not start %s", t.stream.Name))
		return
	}
	m.register(t, a)
}

func (m *Manager) register(t *tile, a player.Adapter) {
	err := m.reg.Add(&Entry{
		ID:        t.id,
		StreamID:  t.stream.ID,
		Kind:      t.stream.Kind,
		WrapperID: t.wrapperID,
		MountID:   t.mountID,
		Adapter:   a,
	})
	if err != nil {
		a.Destroy()
		m.log.Error("register adapter", slog.String("error", err.Error()))
		m.fail(t, fmt.Sprintf("Could not start %s", t.stream.Name))
		return
	}
	t.state = TileMounted
	m.subs.Apply(t.id)
}

func (m *Manager) hooksFor(id InstanceID) player.Hooks {
	return player.Hooks{
		Ready:         func() { m.subs.Apply(id) },
		TracksChanged: func() { m.subs.Apply(id) },
		Failed:        func(err error) { m.playerFailed(id, err) },
	}
}

// playerFailed replaces a lost player with an inline error. The tile keeps
// its place in the grid and the layout.
func (m *Manager) playerFailed(id InstanceID, err error) {
	t, ok := m.tiles[id]
	if !ok {
		return
	}
	m.focus.Forget(id)
	m.reg.Release(id)

	var ee player.EngineError
	msg := fmt.Sprintf("Error playing %s: %s", t.stream.Name, err.Error())
	if errors.As(err, &ee) {
		msg = fmt.Sprintf("Error HLS: %s: %s", t.stream.Name, ee.Details)
	}
	m.log.Warn("player failed", slog.String("instance_id", string(id)), slog.String("error", err.Error()))
	m.fail(t, msg)
}

func (m *Manager) fail(t *tile, msg string) {
	t.state = TileFailed
	t.errMsg = msg
	m.surface.ShowTileError(t.wrapperID, msg)
	m.rec.TileFailed(string(t.stream.Kind))
}

// DestroyTile tears down the tile's player and removes it from the surface.
// Unknown ids are ignored.
func (m *Manager) DestroyTile(ctx context.Context, id InstanceID) {
	t, ok := m.tiles[id]
	if !ok {
		m.log.Debug("destroy of unknown tile", slog.String("instance_id", string(id)))
		return
	}
	m.gate.Cancel(id)
	m.focus.Forget(id)
	m.reg.Release(id)
	m.surface.RemoveTile(t.wrapperID)
	delete(m.tiles, id)
	delete(m.byWrapper, t.wrapperID)
	m.structureChanged(ctx)
}

// RestoreLayout replaces every tile with one tile per known id, in order.
// Ids missing from the catalog are skipped. If nothing could be created the
// catalog's auto-load streams are mounted instead. The order is saved once
// at the end.
func (m *Manager) RestoreLayout(ctx context.Context, ids []catalog.StreamID) {
	m.restoring = true
	for _, id := range m.orderedIDs() {
		m.DestroyTile(ctx, id)
	}

	created := 0
	for _, sid := range ids {
		s, ok := m.catalog.Get(sid)
		if !ok {
			m.log.Warn("saved stream no longer in catalog", slog.String("stream_id", string(sid)))
			continue
		}
		m.CreateTile(ctx, s)
		created++
	}
	if created == 0 {
		for _, s := range m.catalog.AutoLoad() {
			m.CreateTile(ctx, s)
			created++
		}
	}
	m.restoring = false

	m.log.Info("layout restored", slog.Int("saved", len(ids)), slog.Int("tiles", created))
	m.relayout()
	m.order.Persist(ctx)
}

// Start restores the saved layout, or the auto-load streams when none is
// saved or it cannot be read.
func (m *Manager) Start(ctx context.Context) {
	ids, ok, err := m.layout.LoadOrder(ctx)
	if err != nil {
		m.log.Warn("saved layout unreadable, using auto-load streams", slog.String("error", err.Error()))
	}
	if err != nil || !ok {
		ids = nil
	}
	m.RestoreLayout(ctx, ids)
}

// SetViewport records the presentation size and recomputes the grid.
func (m *Manager) SetViewport(width, height int) {
	m.portrait = width > 0 && height > width
	m.relayout()
}

// Reordered saves the order after the surface finished a drag-and-drop.
func (m *Manager) Reordered(ctx context.Context) {
	m.order.Persist(ctx)
}

// Tiles returns a snapshot in presentation order.
func (m *Manager) Tiles() []Tile {
	out := make([]Tile, 0, len(m.tiles))
	for _, id := range m.orderedIDs() {
		t := m.tiles[id]
		snap := Tile{
			InstanceID: t.id,
			StreamID:   t.stream.ID,
			Name:       t.stream.Name,
			Kind:       t.stream.Kind,
			State:      t.state,
			Error:      t.errMsg,
			Muted:      true,
		}
		if e, ok := m.reg.Get(t.id); ok {
			snap.Muted = e.Adapter.IsMuted()
		}
		out = append(out, snap)
	}
	return out
}

// orderedIDs lists tiles in presentation order, then any tile the surface
// did not report.
func (m *Manager) orderedIDs() []InstanceID {
	ids := make([]InstanceID, 0, len(m.tiles))
	seen := make(map[InstanceID]bool, len(m.tiles))
	for _, w := range m.surface.TileOrder() {
		if id, ok := m.byWrapper[w]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	for id := range m.tiles {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m *Manager) instanceForMount(mountID string) (InstanceID, bool) {
	for id, t := range m.tiles {
		if t.mountID == mountID {
			return id, true
		}
	}
	return "", false
}

func (m *Manager) streamFor(wrapperID string) (catalog.StreamID, bool) {
	id, ok := m.byWrapper[wrapperID]
	if !ok {
		return "", false
	}
	return m.tiles[id].stream.ID, true
}

func (m *Manager) structureChanged(ctx context.Context) {
	if m.restoring {
		return
	}
	m.relayout()
	m.order.Persist(ctx)
}

func (m *Manager) relayout() {
	m.surface.SetGrid(layout.Grid(len(m.tiles), m.portrait))
}

// close releases every player without touching the surface or the layout.
func (m *Manager) close() {
	for id := range m.tiles {
		m.gate.Cancel(id)
		m.focus.Forget(id)
		m.reg.Release(id)
	}
	m.tiles = make(map[InstanceID]*tile)
	m.byWrapper = make(map[string]InstanceID)
}
