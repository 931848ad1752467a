// Package playertest provides in-memory player technologies and a manual
// scheduler for tests of code built on package player.
package playertest

import (
	"errors"
	"time"

	"videowall/internal/player"
)

// ErrModuleLoaded is returned by EmbedPlayer.LoadModule for a module that is
// already loaded.
var ErrModuleLoaded = errors.New("module already loaded")

// Backend records every player it creates, keyed by mount id.
type Backend struct {
	Streams map[string]*StreamEngine
	Embeds  map[string]*EmbedPlayer
	// Created lists mount ids in creation order across both technologies.
	Created []string

	StreamErr error
	EmbedErr  error
}

// NewBackend returns an empty Backend.
func NewBackend() *Backend {
	return &Backend{
		Streams: make(map[string]*StreamEngine),
		Embeds:  make(map[string]*EmbedPlayer),
	}
}

// NewStreamEngine implements player.Backend.
func (b *Backend) NewStreamEngine(mountID string, events player.StreamEvents) (player.StreamEngine, player.MediaElement, error) {
	if b.StreamErr != nil {
		return nil, nil, b.StreamErr
	}
	e := &StreamEngine{MountID: mountID, Events: events, SubtitleTrack: -1, Media: &Media{ID: player.Handle("media-" + mountID)}}
	b.Streams[mountID] = e
	b.Created = append(b.Created, mountID)
	return e, e.Media, nil
}

// NewEmbedPlayer implements player.Backend.
func (b *Backend) NewEmbedPlayer(mountID, videoID string, events player.EmbedEvents) (player.EmbedPlayer, error) {
	if b.EmbedErr != nil {
		return nil, b.EmbedErr
	}
	p := &EmbedPlayer{MountID: mountID, VideoID: videoID, Events: events, muted: true, modules: map[string]bool{}}
	b.Embeds[mountID] = p
	b.Created = append(b.Created, mountID)
	return p, nil
}

// StreamEngine is a fake streaming engine.
type StreamEngine struct {
	MountID       string
	Source        string
	Attached      bool
	Events        player.StreamEvents
	Media         *Media
	Tracks        []player.SubtitleTrack
	SubtitleTrack int
	StartLoads    int
	Recovers      int
	Destroyed     bool
}

func (e *StreamEngine) LoadSource(url string)                  { e.Source = url }
func (e *StreamEngine) AttachMedia(player.MediaElement)        { e.Attached = true }
func (e *StreamEngine) StartLoad()                             { e.StartLoads++ }
func (e *StreamEngine) RecoverMediaError()                     { e.Recovers++ }
func (e *StreamEngine) SubtitleTracks() []player.SubtitleTrack { return e.Tracks }
func (e *StreamEngine) SetSubtitleTrack(index int)             { e.SubtitleTrack = index }
func (e *StreamEngine) Destroy()                               { e.Destroyed = true }

// Media is a fake native media element.
type Media struct {
	ID    player.Handle
	muted bool
	Plays int
}

func (m *Media) Handle() player.Handle { return m.ID }
func (m *Media) SetMuted(muted bool)   { m.muted = muted }
func (m *Media) Muted() bool           { return m.muted }
func (m *Media) Play()                 { m.Plays++ }

// EmbedPlayer is a fake embedded service player.
type EmbedPlayer struct {
	MountID      string
	VideoID      string
	Events       player.EmbedEvents
	Captions     []player.CaptionTrack
	CaptionTrack string
	CaptionSets  int
	Plays        int
	Destroyed    bool

	muted   bool
	modules map[string]bool
}

func (p *EmbedPlayer) Mute()          { p.muted = true }
func (p *EmbedPlayer) Unmute()        { p.muted = false }
func (p *EmbedPlayer) IsMuted() bool  { return p.muted }
func (p *EmbedPlayer) PlayVideo()     { p.Plays++ }
func (p *EmbedPlayer) Destroy()       { p.Destroyed = true }
func (p *EmbedPlayer) Iframe() player.Handle {
	return player.Handle("iframe-" + p.MountID)
}

func (p *EmbedPlayer) LoadModule(name string) error {
	if p.modules[name] {
		return ErrModuleLoaded
	}
	p.modules[name] = true
	return nil
}

func (p *EmbedPlayer) CaptionTracks() []player.CaptionTrack { return p.Captions }

func (p *EmbedPlayer) SetCaptionTrack(code string) {
	p.CaptionTrack = code
	p.CaptionSets++
}

// Scheduler collects deferred functions until the test fires them.
type Scheduler struct {
	timers []*timer
}

type timer struct {
	delay time.Duration
	fn    func()
	done  bool
}

// AfterFunc implements player.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	t := &timer{delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return func() bool {
		if t.done {
			return false
		}
		t.done = true
		return true
	}
}

// Pending returns the number of timers neither fired nor stopped.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// Delays returns the delays of the pending timers.
func (s *Scheduler) Delays() []time.Duration {
	var out []time.Duration
	for _, t := range s.timers {
		if !t.done {
			out = append(out, t.delay)
		}
	}
	return out
}

// Fire runs every pending timer once, in scheduling order, and returns how
// many ran. Timers scheduled while firing stay pending.
func (s *Scheduler) Fire() int {
	due := s.timers
	s.timers = nil
	n := 0
	for _, t := range due {
		if t.done {
			continue
		}
		t.done = true
		t.fn()
		n++
	}
	return n
}
