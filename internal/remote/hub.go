// Package remote connects browser renderers to walls over a websocket. Each
// connection gets its own wall, driven by its own event loop.
package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"videowall/internal/layout"
	"videowall/internal/settings"
	"videowall/internal/wall"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 60 * time.Second
	writeTimeout        = 10 * time.Second
	closeTimeout        = 5 * time.Second
)

// SettingsSource provides the current preferences for new sessions.
type SettingsSource interface {
	Get() settings.Settings
}

// LayoutSource hands out the saved order of a named wall.
type LayoutSource interface {
	ForWall(name string) (*layout.Store, error)
}

// HubConfig carries what every session's wall is built from.
type HubConfig struct {
	Catalog  wall.Catalog
	Layout   LayoutSource
	Settings SettingsSource
	Recorder wall.Recorder
	Log      *slog.Logger

	SubtitleLanguages   []string
	SubtitleSettleDelay time.Duration
	PingInterval        time.Duration
	PongTimeout         time.Duration

	// CheckOrigin overrides the upgrader's origin check. Nil accepts any
	// origin.
	CheckOrigin func(r *http.Request) bool
}

// Hub accepts renderer connections and tracks the live sessions.
type Hub struct {
	cfg      HubConfig
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ settings.Notifier = (*Hub)(nil)

// NewHub returns a hub with no sessions.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaultPongTimeout
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		cfg: cfg,
		log: cfg.Log,
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[string]*Session),
	}
}

// ActiveSessions returns the number of connected renderers.
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// SettingsChanged pushes new preferences to every live wall.
func (h *Hub) SettingsChanged(st settings.Settings) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s := s
		s.loop.Post(func() {
			s.wall.SetSubtitles(st.EnableSubtitles)
			s.send(CmdSettingsBackground, "", backgroundPayload{Color: st.BackgroundColor})
		})
	}
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		s.conn.Close()
	}
}

// ServeHTTP upgrades the request and runs the session until the renderer
// goes away. The wall query parameter names the layout the renderer shows;
// renderers on the same name share it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wallName := r.URL.Query().Get("wall")
	order, err := h.cfg.Layout.ForWall(wallName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newSession(ctx, conn, h.log.With(slog.String("wall", wallName)))
	prefs := h.cfg.Settings.Get()
	s.wall = wall.New(wall.Config{
		Surface:             s,
		Backend:             s,
		Catalog:             h.cfg.Catalog,
		Layout:              order,
		Scheduler:           s.loop,
		Recorder:            h.cfg.Recorder,
		Log:                 s.log,
		SubtitlesEnabled:    prefs.EnableSubtitles,
		SubtitleLanguages:   h.cfg.SubtitleLanguages,
		SubtitleSettleDelay: h.cfg.SubtitleSettleDelay,
	})

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	s.log.Info("renderer connected", slog.String("remote_addr", r.RemoteAddr))

	go s.loop.Run(ctx)
	s.loop.Post(func() {
		s.send(CmdSettingsBackground, "", backgroundPayload{Color: prefs.BackgroundColor})
		s.wall.Start(ctx)
	})

	h.serve(s)

	s.shutdown()
	s.closeWall(closeTimeout)
	h.mu.Lock()
	delete(h.sessions, s.id)
	h.mu.Unlock()
	s.log.Info("renderer disconnected")
}

// serve pumps frames until the connection fails.
func (h *Hub) serve(s *Session) {
	conn := s.conn
	conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(h.cfg.PingInterval)
	defer pingTicker.Stop()

	errorChan := make(chan error, 1)
	go func() {
		for {
			var env Envelope
			if err := conn.ReadJSON(&env); err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
			if !s.loop.Post(func() { h.handle(s, env) }) {
				errorChan <- context.Canceled
				return
			}
		}
	}()

	for {
		select {
		case b := <-s.out:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				s.log.Info("error writing to renderer", slog.String("error", err.Error()))
				return
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.Info("error sending ping", slog.String("error", err.Error()))
				return
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Info("error reading from renderer", slog.String("error", err.Error()))
			}
			return
		}
	}
}

func (h *Hub) handle(s *Session, env Envelope) {
	if err := s.dispatch(env); err != nil {
		s.log.Warn("rejected renderer event", slog.String("type", env.Type), slog.String("error", err.Error()))
		s.send(CmdError, env.Target, errorPayload{Message: err.Error()})
	}
}

// Snapshot returns the tiles of every session, keyed by session id. It is
// used by the debug endpoint.
func (h *Hub) Snapshot(ctx context.Context) map[string][]wall.Tile {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	out := make(map[string][]wall.Tile, len(sessions))
	for _, s := range sessions {
		s := s
		ch := make(chan []wall.Tile, 1)
		if !s.loop.Post(func() { ch <- s.wall.Tiles() }) {
			continue
		}
		select {
		case tiles := <-ch:
			out[s.id] = tiles
		case <-s.loop.Done():
		case <-ctx.Done():
			return out
		}
	}
	return out
}

// WriteSnapshot serves Snapshot as JSON.
func (h *Hub) WriteSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Snapshot(r.Context()))
}
