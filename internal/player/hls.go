package player

import (
	"fmt"
	"log/slog"
)

// ErrorType classifies streaming engine errors.
type ErrorType string

const (
	ErrorNetwork ErrorType = "networkError"
	ErrorMedia   ErrorType = "mediaError"
	ErrorOther   ErrorType = "otherError"
)

// EngineError is one report from the streaming engine's error channel.
type EngineError struct {
	Type    ErrorType `json:"type"`
	Details string    `json:"details"`
	Fatal   bool      `json:"fatal"`
}

func (e EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// SubtitleTrack is one subtitle rendition known to the streaming engine.
type SubtitleTrack struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	Lang string `json:"lang,omitempty"`
}

// StreamEngine is the control surface of the streaming-media engine.
type StreamEngine interface {
	LoadSource(url string)
	AttachMedia(media MediaElement)
	StartLoad()
	RecoverMediaError()
	SubtitleTracks() []SubtitleTrack
	// SetSubtitleTrack selects a track by index; -1 disables subtitles.
	SetSubtitleTrack(index int)
	Destroy()
}

// MediaElement is the native media element the engine renders into.
type MediaElement interface {
	Handle() Handle
	SetMuted(muted bool)
	Muted() bool
	Play()
}

// StreamEvents receives the streaming engine's callbacks.
type StreamEvents interface {
	ManifestParsed()
	SubtitleTracksUpdated()
	EngineError(e EngineError)
}

// StreamConfig configures a StreamAdapter.
type StreamConfig struct {
	MountID string
	URL     string
	Hooks   Hooks
	Log     *slog.Logger
}

// StreamAdapter drives a streaming-media engine. Muting maps to the media
// element's native mute flag and fullscreen to the element itself.
type StreamAdapter struct {
	engine    StreamEngine
	media     MediaElement
	hooks     Hooks
	log       *slog.Logger
	ready     bool
	destroyed bool
}

var _ Adapter = (*StreamAdapter)(nil)
var _ StreamEvents = (*StreamAdapter)(nil)

// NewStream creates the engine for cfg.MountID, starts muted and begins loading
// cfg.URL.
func NewStream(backend Backend, cfg StreamConfig) (*StreamAdapter, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	a := &StreamAdapter{hooks: cfg.Hooks, log: log}

	engine, media, err := backend.NewStreamEngine(cfg.MountID, a)
	if err != nil {
		return nil, fmt.Errorf("create stream engine: %w", err)
	}
	a.engine, a.media = engine, media

	media.SetMuted(true)
	engine.LoadSource(cfg.URL)
	engine.AttachMedia(media)
	return a, nil
}

func (a *StreamAdapter) Mute() {
	if a.destroyed {
		return
	}
	a.media.SetMuted(true)
}

func (a *StreamAdapter) Unmute() {
	if a.destroyed {
		return
	}
	a.media.SetMuted(false)
}

func (a *StreamAdapter) IsMuted() bool {
	if a.destroyed {
		return true
	}
	return a.media.Muted()
}

func (a *StreamAdapter) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.engine.Destroy()
}

func (a *StreamAdapter) FullscreenTarget() Handle { return a.media.Handle() }

func (a *StreamAdapter) SupportsFullscreen() bool { return true }

func (a *StreamAdapter) IsReady() bool { return a.ready && !a.destroyed }

func (a *StreamAdapter) Play() {
	if a.destroyed {
		return
	}
	a.media.Play()
}

// SetSubtitles selects the first track when enabled. With no tracks known yet
// it does nothing; the engine's track update raises Hooks.TracksChanged and
// the owner applies the flag again.
func (a *StreamAdapter) SetSubtitles(enabled bool) {
	if a.destroyed {
		return
	}
	if !enabled {
		a.engine.SetSubtitleTrack(-1)
		return
	}
	if len(a.engine.SubtitleTracks()) == 0 {
		a.log.Debug("subtitles enabled, waiting for subtitle tracks")
		return
	}
	a.engine.SetSubtitleTrack(0)
}

// ManifestParsed implements StreamEvents.
func (a *StreamAdapter) ManifestParsed() {
	if a.destroyed {
		return
	}
	a.ready = true
	a.media.Play()
	a.hooks.ready()
}

// SubtitleTracksUpdated implements StreamEvents.
func (a *StreamAdapter) SubtitleTracksUpdated() {
	if a.destroyed {
		return
	}
	a.hooks.tracksChanged()
}

// EngineError implements StreamEvents. Fatal network errors reload, fatal
// media errors recover; any other fatal error tears the adapter down.
func (a *StreamAdapter) EngineError(e EngineError) {
	if a.destroyed {
		return
	}
	a.log.Warn("stream engine error",
		slog.String("type", string(e.Type)),
		slog.String("details", e.Details),
		slog.Bool("fatal", e.Fatal))
	if !e.Fatal {
		return
	}

	switch e.Type {
	case ErrorNetwork:
		a.engine.StartLoad()
	case ErrorMedia:
		a.engine.RecoverMediaError()
	default:
		a.Destroy()
		a.hooks.failed(e)
	}
}
