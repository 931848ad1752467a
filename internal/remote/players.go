package remote

import (
	"fmt"

	"videowall/internal/player"
)

// The renderer runs the real player technologies. These mirrors forward
// every control call as a command and answer queries from the last state the
// renderer reported.

type commander interface {
	send(cmd, target string, payload any)
}

type remoteEngine struct {
	out     commander
	mountID string
	events  player.StreamEvents
	media   *remoteMedia
	tracks  []player.SubtitleTrack
	forget  func()
}

func (e *remoteEngine) LoadSource(url string) {
	e.out.send(CmdHLSLoad, e.mountID, urlPayload{URL: url})
}

// AttachMedia is implied by hls.create on the renderer.
func (e *remoteEngine) AttachMedia(player.MediaElement) {}

func (e *remoteEngine) StartLoad() { e.out.send(CmdHLSStartLoad, e.mountID, nil) }

func (e *remoteEngine) RecoverMediaError() { e.out.send(CmdHLSRecover, e.mountID, nil) }

func (e *remoteEngine) SubtitleTracks() []player.SubtitleTrack { return e.tracks }

func (e *remoteEngine) SetSubtitleTrack(index int) {
	e.out.send(CmdHLSSubtitleTrack, e.mountID, trackPayload{Index: index})
}

func (e *remoteEngine) Destroy() {
	e.out.send(CmdHLSDestroy, e.mountID, nil)
	if e.forget != nil {
		e.forget()
	}
}

type remoteMedia struct {
	out     commander
	mountID string
	handle  player.Handle
	muted   bool
}

func (m *remoteMedia) Handle() player.Handle { return m.handle }

func (m *remoteMedia) SetMuted(muted bool) {
	m.muted = muted
	m.out.send(CmdMediaMuted, m.mountID, mutedPayload{Muted: muted})
}

func (m *remoteMedia) Muted() bool { return m.muted }

func (m *remoteMedia) Play() { m.out.send(CmdMediaPlay, m.mountID, nil) }

type remoteEmbed struct {
	out     commander
	mountID string
	iframe  player.Handle
	events  player.EmbedEvents
	muted   bool
	modules map[string]bool
	tracks  []player.CaptionTrack
	forget  func()
}

func (p *remoteEmbed) setMuted(muted bool) {
	p.muted = muted
	p.out.send(CmdEmbedMute, p.mountID, mutedPayload{Muted: muted})
}

func (p *remoteEmbed) Mute()         { p.setMuted(true) }
func (p *remoteEmbed) Unmute()       { p.setMuted(false) }
func (p *remoteEmbed) IsMuted() bool { return p.muted }
func (p *remoteEmbed) PlayVideo()    { p.out.send(CmdEmbedPlay, p.mountID, nil) }

func (p *remoteEmbed) Destroy() {
	p.out.send(CmdEmbedDestroy, p.mountID, nil)
	if p.forget != nil {
		p.forget()
	}
}

func (p *remoteEmbed) Iframe() player.Handle { return p.iframe }

// LoadModule fails for a module the player already loaded, as the service
// does.
func (p *remoteEmbed) LoadModule(name string) error {
	if p.modules[name] {
		return fmt.Errorf("module %q already loaded", name)
	}
	p.modules[name] = true
	p.out.send(CmdEmbedLoadModule, p.mountID, modulePayload{Module: name})
	return nil
}

func (p *remoteEmbed) CaptionTracks() []player.CaptionTrack { return p.tracks }

func (p *remoteEmbed) SetCaptionTrack(code string) {
	p.out.send(CmdEmbedCaptionTrack, p.mountID, captionPayload{LanguageCode: code})
}

// Element ids the renderer must give the presentable elements of a mount.
func mediaHandle(mountID string) player.Handle  { return player.Handle(mountID + "-video") }
func iframeHandle(mountID string) player.Handle { return player.Handle(mountID + "-iframe") }
