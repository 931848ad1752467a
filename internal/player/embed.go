package player

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultSettleDelay is how long caption metadata is given to arrive before a
// track is chosen. The embedded service does not signal track availability.
const DefaultSettleDelay = 750 * time.Millisecond

// DefaultLanguages is the caption language preference order.
var DefaultLanguages = []string{"en", "de"}

// Embedded service error codes that will not go away by waiting.
var terminalEmbedErrors = map[int]string{
	2:   "invalid video id",
	100: "video not found",
	101: "embedding not allowed",
	150: "embedding not allowed",
}

// CaptionTrack is one caption language offered by the embedded player.
type CaptionTrack struct {
	LanguageCode string `json:"languageCode"`
	LanguageName string `json:"languageName,omitempty"`
}

// EmbedPlayer is the control surface of the embedded video service player.
type EmbedPlayer interface {
	Mute()
	Unmute()
	IsMuted() bool
	PlayVideo()
	Destroy()
	Iframe() Handle
	// LoadModule may fail when the module is already loaded.
	LoadModule(name string) error
	CaptionTracks() []CaptionTrack
	// SetCaptionTrack selects a caption language; "" clears the track.
	SetCaptionTrack(languageCode string)
}

// EmbedEvents receives the per-player callbacks of the embedded service.
type EmbedEvents interface {
	PlayerReady()
	PlayerError(code int)
	StateChange(state int)
}

// EmbedConfig configures an EmbedAdapter.
type EmbedConfig struct {
	MountID     string
	VideoID     string
	Languages   []string
	SettleDelay time.Duration
	Scheduler   Scheduler
	Hooks       Hooks
	Log         *slog.Logger
}

// EmbedAdapter drives an embedded service player. Until the player's ready
// callback, mute state is recorded and applied on ready.
type EmbedAdapter struct {
	player      EmbedPlayer
	hooks       Hooks
	log         *slog.Logger
	sched       Scheduler
	languages   []string
	settleDelay time.Duration

	ready      bool
	destroyed  bool
	muted      bool
	stopSettle func() bool
}

var _ Adapter = (*EmbedAdapter)(nil)
var _ EmbedEvents = (*EmbedAdapter)(nil)

// NewEmbed creates the embedded player for cfg.VideoID at cfg.MountID. The
// service's global API must already be loaded.
func NewEmbed(backend Backend, cfg EmbedConfig) (*EmbedAdapter, error) {
	a := &EmbedAdapter{
		hooks:       cfg.Hooks,
		log:         cfg.Log,
		sched:       cfg.Scheduler,
		languages:   cfg.Languages,
		settleDelay: cfg.SettleDelay,
		muted:       true,
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.languages == nil {
		a.languages = DefaultLanguages
	}
	if a.settleDelay <= 0 {
		a.settleDelay = DefaultSettleDelay
	}

	p, err := backend.NewEmbedPlayer(cfg.MountID, cfg.VideoID, a)
	if err != nil {
		return nil, fmt.Errorf("create embedded player: %w", err)
	}
	a.player = p
	return a, nil
}

func (a *EmbedAdapter) live() bool { return a.ready && !a.destroyed }

func (a *EmbedAdapter) Mute() {
	a.muted = true
	if a.live() {
		a.player.Mute()
	}
}

func (a *EmbedAdapter) Unmute() {
	if a.destroyed {
		return
	}
	a.muted = false
	if a.live() {
		a.player.Unmute()
	}
}

func (a *EmbedAdapter) IsMuted() bool {
	if a.destroyed {
		return true
	}
	if a.ready {
		return a.player.IsMuted()
	}
	return a.muted
}

func (a *EmbedAdapter) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.cancelSettle()
	a.player.Destroy()
}

func (a *EmbedAdapter) FullscreenTarget() Handle { return a.player.Iframe() }

// SupportsFullscreen is false: the service only enters fullscreen from its
// own control.
func (a *EmbedAdapter) SupportsFullscreen() bool { return false }

func (a *EmbedAdapter) IsReady() bool { return a.live() }

func (a *EmbedAdapter) Play() {
	if a.live() {
		a.player.PlayVideo()
	}
}

// SetSubtitles loads the captions module and, when enabled, picks a track
// after the settling delay. Before ready it does nothing; the owner applies
// the flag again on Hooks.Ready.
func (a *EmbedAdapter) SetSubtitles(enabled bool) {
	if !a.live() {
		return
	}
	if err := a.player.LoadModule("captions"); err != nil {
		a.log.Debug("captions module load ignored", slog.String("error", err.Error()))
	}

	a.cancelSettle()
	if !enabled {
		a.player.SetCaptionTrack("")
		return
	}
	a.stopSettle = a.sched.AfterFunc(a.settleDelay, a.selectCaptionTrack)
}

func (a *EmbedAdapter) selectCaptionTrack() {
	a.stopSettle = nil
	if !a.live() {
		return
	}
	tracks := a.player.CaptionTracks()
	if len(tracks) == 0 {
		a.log.Debug("subtitles enabled but no caption tracks")
		return
	}
	track := PreferredCaption(tracks, a.languages)
	a.player.SetCaptionTrack(track.LanguageCode)
	a.log.Debug("caption track selected", slog.String("lang", track.LanguageCode))
}

func (a *EmbedAdapter) cancelSettle() {
	if a.stopSettle != nil {
		a.stopSettle()
		a.stopSettle = nil
	}
}

// PreferredCaption returns the track for the earliest language in langs that
// is offered, falling back to the first track. tracks must not be empty.
func PreferredCaption(tracks []CaptionTrack, langs []string) CaptionTrack {
	for _, l := range langs {
		for _, t := range tracks {
			if t.LanguageCode == l {
				return t
			}
		}
	}
	return tracks[0]
}

// PlayerReady implements EmbedEvents.
func (a *EmbedAdapter) PlayerReady() {
	if a.destroyed || a.ready {
		return
	}
	a.ready = true
	if a.muted {
		a.player.Mute()
	} else {
		a.player.Unmute()
	}
	a.player.PlayVideo()
	a.hooks.ready()
}

// PlayerError implements EmbedEvents.
func (a *EmbedAdapter) PlayerError(code int) {
	if a.destroyed {
		return
	}
	reason, terminal := terminalEmbedErrors[code]
	a.log.Warn("embedded player error", slog.Int("code", code), slog.Bool("terminal", terminal))
	if !terminal {
		return
	}
	a.Destroy()
	a.hooks.failed(fmt.Errorf("embedded player error %d: %s", code, reason))
}

// StateChange implements EmbedEvents.
func (a *EmbedAdapter) StateChange(state int) {
	a.log.Debug("embedded player state", slog.Int("state", state))
}
