package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"videowall/internal/eventloop"
	"videowall/internal/player"
	"videowall/internal/wall"
)

// Session is one connected renderer and the wall it displays. The wall and
// the mirrored renderer state are only touched on the session's loop.
type Session struct {
	id   string
	conn *websocket.Conn
	loop *eventloop.Loop
	wall *wall.Wall
	log  *slog.Logger
	ctx  context.Context

	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	order      []string
	fullscreen player.Handle
	streams    map[string]*remoteEngine
	embeds     map[string]*remoteEmbed
}

var (
	_ wall.Surface   = (*Session)(nil)
	_ player.Backend = (*Session)(nil)
)

func newSession(ctx context.Context, conn *websocket.Conn, log *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		conn:    conn,
		loop:    eventloop.New(0),
		log:     log.With(slog.String("session_id", id)),
		ctx:     ctx,
		out:     make(chan []byte, 64),
		closed:  make(chan struct{}),
		streams: make(map[string]*remoteEngine),
		embeds:  make(map[string]*remoteEmbed),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

func (s *Session) send(cmd, target string, payload any) {
	env := Envelope{Type: cmd, Target: target}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.log.Error("encode command", slog.String("type", cmd), slog.String("error", err.Error()))
			return
		}
		env.Payload = raw
	}
	b, err := json.Marshal(env)
	if err != nil {
		s.log.Error("encode envelope", slog.String("type", cmd), slog.String("error", err.Error()))
		return
	}
	select {
	case s.out <- b:
	case <-s.closed:
	}
}

func (s *Session) shutdown() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// MountTile implements wall.Surface.
func (s *Session) MountTile(m wall.Mount) {
	s.order = append(s.order, m.WrapperID)
	s.send(CmdTileMount, m.WrapperID, m)
}

func (s *Session) ShowTileError(wrapperID, message string) {
	s.send(CmdTileError, wrapperID, tileErrorPayload{Message: message})
}

func (s *Session) RemoveTile(wrapperID string) {
	for i, w := range s.order {
		if w == wrapperID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.send(CmdTileRemove, wrapperID, nil)
}

func (s *Session) SetActive(wrapperID string, active bool) {
	s.send(CmdTileActive, wrapperID, activePayload{Active: active})
}

func (s *Session) SetGrid(cols, rows int) {
	s.send(CmdGridColumns, "", gridPayload{Columns: cols, Rows: rows})
}

func (s *Session) TileOrder() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Session) FullscreenElement() (player.Handle, bool) {
	return s.fullscreen, s.fullscreen != ""
}

// RequestFullscreen asks the renderer; the outcome arrives as a
// fullscreen.change event.
func (s *Session) RequestFullscreen(target player.Handle) error {
	s.send(CmdFullscreenRequest, "", fullscreenPayload{Element: target})
	return nil
}

func (s *Session) ExitFullscreen() {
	s.send(CmdFullscreenExit, "", nil)
}

// NewStreamEngine implements player.Backend.
func (s *Session) NewStreamEngine(mountID string, events player.StreamEvents) (player.StreamEngine, player.MediaElement, error) {
	if _, exists := s.streams[mountID]; exists {
		return nil, nil, fmt.Errorf("stream engine for %s already exists", mountID)
	}
	m := &remoteMedia{out: s, mountID: mountID, handle: mediaHandle(mountID)}
	e := &remoteEngine{out: s, mountID: mountID, events: events, media: m}
	e.forget = func() { delete(s.streams, mountID) }
	s.streams[mountID] = e
	s.send(CmdHLSCreate, mountID, hlsCreatePayload{Media: m.handle})
	return e, m, nil
}

// NewEmbedPlayer implements player.Backend.
func (s *Session) NewEmbedPlayer(mountID, videoID string, events player.EmbedEvents) (player.EmbedPlayer, error) {
	if _, exists := s.embeds[mountID]; exists {
		return nil, fmt.Errorf("embedded player for %s already exists", mountID)
	}
	p := &remoteEmbed{
		out:     s,
		mountID: mountID,
		iframe:  iframeHandle(mountID),
		events:  events,
		muted:   true,
		modules: make(map[string]bool),
		forget:  func() { delete(s.embeds, mountID) },
	}
	s.embeds[mountID] = p
	s.send(CmdEmbedCreate, mountID, embedCreatePayload{VideoID: videoID, Iframe: p.iframe, Muted: true, Autoplay: true})
	return p, nil
}

// dispatch applies one renderer event. It runs on the loop.
func (s *Session) dispatch(env Envelope) error {
	w := s.wall
	switch env.Type {
	case EventEmbedAPIReady:
		w.EmbedServiceReady()
	case EventTileSelect:
		var p selectPayload
		if err := decode(env, &p); err != nil {
			return err
		}
		if _, ok := w.SelectStream(s.ctx, p.StreamID); !ok {
			return fmt.Errorf("unknown stream %q", p.StreamID)
		}
	case EventTileRemove:
		w.DestroyTile(s.ctx, wall.InstanceID(env.Target))
	case EventTileClick:
		w.Click(wall.InstanceID(env.Target))
	case EventTileDoubleClick:
		w.DoubleClick(wall.InstanceID(env.Target))
	case EventFullscreenChange:
		var p fullscreenPayload
		if err := decode(env, &p); err != nil {
			return err
		}
		s.fullscreen = p.Element
		w.FullscreenChanged()
	case EventGridReordered:
		var p reorderPayload
		if err := decode(env, &p); err != nil {
			return err
		}
		s.reorder(p.Order)
		w.Reordered(s.ctx)
	case EventViewportResize:
		var p viewportPayload
		if err := decode(env, &p); err != nil {
			return err
		}
		w.SetViewport(p.Width, p.Height)
	case EventHLSManifestParsed, EventHLSError, EventHLSSubtitleTracks, EventHLSUnsupported, EventMediaMutedChanged:
		return s.dispatchStream(env)
	case EventEmbedReady, EventEmbedError, EventEmbedState, EventEmbedCaptionTracks, EventEmbedMuted:
		return s.dispatchEmbed(env)
	default:
		return fmt.Errorf("unknown event type %q", env.Type)
	}
	return nil
}

func (s *Session) dispatchStream(env Envelope) error {
	e, ok := s.streams[env.Target]
	if !ok {
		s.log.Debug("event for unknown stream engine", slog.String("type", env.Type), slog.String("target", env.Target))
		return nil
	}
	switch env.Type {
	case EventHLSManifestParsed:
		e.events.ManifestParsed()
	case EventHLSError:
		var p player.EngineError
		if err := decode(env, &p); err != nil {
			return err
		}
		e.events.EngineError(p)
	case EventHLSSubtitleTracks:
		var p subtitleTracksPayload
		if err := decode(env, &p); err != nil {
			return err
		}
		e.tracks = p.Tracks
		e.events.SubtitleTracksUpdated()
	case EventHLSUnsupported:
		e.events.EngineError(player.EngineError{Type: player.ErrorOther, Details: "HLS not supported", Fatal: true})
	case EventMediaMutedChanged:
		var p mutedPayload
		if err := decode(env, &p); err != nil {
			return err
		}
		e.media.muted = p.Muted
		s.wall.MuteChanged(env.Target)
	}
	return nil
}

func (s *Session) dispatchEmbed(env Envelope) error {
	p, ok := s.embeds[env.Target]
	if !ok {
		s.log.Debug("event for unknown embedded player", slog.String("type", env.Type), slog.String("target", env.Target))
		return nil
	}
	switch env.Type {
	case EventEmbedReady:
		p.events.PlayerReady()
	case EventEmbedError:
		var pl embedErrorPayload
		if err := decode(env, &pl); err != nil {
			return err
		}
		p.events.PlayerError(pl.Code)
	case EventEmbedState:
		var pl embedStatePayload
		if err := decode(env, &pl); err != nil {
			return err
		}
		p.events.StateChange(pl.State)
	case EventEmbedCaptionTracks:
		var pl captionTracksPayload
		if err := decode(env, &pl); err != nil {
			return err
		}
		p.tracks = pl.Tracks
	case EventEmbedMuted:
		var pl mutedPayload
		if err := decode(env, &pl); err != nil {
			return err
		}
		p.muted = pl.Muted
		s.wall.MuteChanged(env.Target)
	}
	return nil
}

// reorder adopts the renderer's order, keeping only wrappers it was told to
// mount.
func (s *Session) reorder(order []string) {
	known := make(map[string]bool, len(s.order))
	for _, w := range s.order {
		known[w] = true
	}
	next := make([]string, 0, len(order))
	for _, w := range order {
		if known[w] {
			next = append(next, w)
			delete(known, w)
		}
	}
	for _, w := range s.order {
		if known[w] {
			next = append(next, w)
		}
	}
	s.order = next
}

func decode(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", env.Type, err)
	}
	return nil
}

// closeWall destroys every player on the loop and stops it. It waits at most
// timeout for the loop.
func (s *Session) closeWall(timeout time.Duration) {
	done := make(chan struct{})
	if s.loop.Post(func() {
		s.wall.Close()
		close(done)
	}) {
		select {
		case <-done:
		case <-time.After(timeout):
			s.log.Warn("wall did not close in time")
		}
	}
	s.loop.Stop()
}
