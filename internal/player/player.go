// Package player wraps the two player technologies a tile can host, a
// streaming-media engine with a native media element and an embedded video
// service player, behind one Adapter contract.
package player

import (
	"errors"
	"time"
)

var (
	// ErrUnsupported is returned by a Backend whose runtime cannot host the
	// requested technology.
	ErrUnsupported = errors.New("player technology not supported")

	// ErrInvalidVideoURL is returned when no embedded video id can be found in
	// a locator.
	ErrInvalidVideoURL = errors.New("invalid video url")
)

// Handle identifies a presentable element (media element or player iframe).
// Handles are compared to find which tile owns the fullscreen element.
type Handle string

// Adapter is the uniform capability set of one mounted player.
type Adapter interface {
	Mute()
	Unmute()
	IsMuted() bool
	// Destroy releases the underlying player. It is idempotent and safe
	// before the player became ready.
	Destroy()
	FullscreenTarget() Handle
	SupportsFullscreen() bool
	IsReady() bool
	// Play resumes playback if the player can.
	Play()
	// SetSubtitles applies the global subtitle flag with the policy of the
	// underlying technology.
	SetSubtitles(enabled bool)
}

// Hooks carry adapter signals back to the owner of the tile.
type Hooks struct {
	// Ready fires once the underlying player can be controlled.
	Ready func()
	// TracksChanged fires when the subtitle track list of the player changed.
	TracksChanged func()
	// Failed fires after a terminal error; the adapter is already torn down.
	Failed func(err error)
}

func (h Hooks) ready() {
	if h.Ready != nil {
		h.Ready()
	}
}

func (h Hooks) tracksChanged() {
	if h.TracksChanged != nil {
		h.TracksChanged()
	}
}

func (h Hooks) failed(err error) {
	if h.Failed != nil {
		h.Failed(err)
	}
}

// Scheduler runs deferred continuations on the owner's event loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Backend constructs the underlying player technologies for a mount point.
type Backend interface {
	NewStreamEngine(mountID string, events StreamEvents) (StreamEngine, MediaElement, error)
	NewEmbedPlayer(mountID, videoID string, events EmbedEvents) (EmbedPlayer, error)
}
