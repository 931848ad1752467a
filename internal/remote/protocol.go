package remote

import (
	"encoding/json"

	"videowall/internal/catalog"
	"videowall/internal/player"
)

// Envelope is the frame exchanged in both directions. Target is the wrapper
// or mount id a message is about, when it is about one.
type Envelope struct {
	Type    string          `json:"type"`
	Target  string          `json:"target,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Events sent by the renderer.
const (
	EventEmbedAPIReady      = "youtube.api_ready"
	EventTileSelect         = "tile.select"
	EventTileRemove         = "tile.remove"
	EventTileClick          = "tile.click"
	EventTileDoubleClick    = "tile.dblclick"
	EventFullscreenChange   = "fullscreen.change"
	EventGridReordered      = "grid.reordered"
	EventViewportResize     = "viewport.resize"
	EventHLSManifestParsed  = "hls.manifest_parsed"
	EventHLSError           = "hls.error"
	EventHLSSubtitleTracks  = "hls.subtitle_tracks"
	EventHLSUnsupported     = "hls.unsupported"
	EventMediaMutedChanged  = "media.muted_changed"
	EventEmbedReady         = "youtube.ready"
	EventEmbedError         = "youtube.error"
	EventEmbedState         = "youtube.state"
	EventEmbedCaptionTracks = "youtube.captions"
	EventEmbedMuted         = "youtube.muted"
)

// Commands sent to the renderer.
const (
	CmdTileMount          = "tile.mount"
	CmdTileError          = "tile.error"
	CmdTileRemove         = "tile.remove"
	CmdTileActive         = "tile.active"
	CmdGridColumns        = "grid.columns"
	CmdFullscreenRequest  = "fullscreen.request"
	CmdFullscreenExit     = "fullscreen.exit"
	CmdHLSCreate          = "hls.create"
	CmdHLSLoad            = "hls.load"
	CmdHLSStartLoad       = "hls.start_load"
	CmdHLSRecover         = "hls.recover"
	CmdHLSSubtitleTrack   = "hls.subtitle_track"
	CmdHLSDestroy         = "hls.destroy"
	CmdMediaMuted         = "media.muted"
	CmdMediaPlay          = "media.play"
	CmdEmbedCreate        = "youtube.create"
	CmdEmbedMute          = "youtube.mute"
	CmdEmbedPlay          = "youtube.play"
	CmdEmbedLoadModule    = "youtube.load_module"
	CmdEmbedCaptionTrack  = "youtube.caption_track"
	CmdEmbedDestroy       = "youtube.destroy"
	CmdSettingsBackground = "settings.background"
	CmdError              = "error"
)

type selectPayload struct {
	StreamID catalog.StreamID `json:"stream_id"`
}

type fullscreenPayload struct {
	Element player.Handle `json:"element"`
}

type reorderPayload struct {
	Order []string `json:"order"`
}

type viewportPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type subtitleTracksPayload struct {
	Tracks []player.SubtitleTrack `json:"tracks"`
}

type embedErrorPayload struct {
	Code int `json:"code"`
}

type embedStatePayload struct {
	State int `json:"state"`
}

type captionTracksPayload struct {
	Tracks []player.CaptionTrack `json:"tracks"`
}

type tileErrorPayload struct {
	Message string `json:"message"`
}

type activePayload struct {
	Active bool `json:"active"`
}

type gridPayload struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

type hlsCreatePayload struct {
	Media player.Handle `json:"media"`
}

type urlPayload struct {
	URL string `json:"url"`
}

type trackPayload struct {
	Index int `json:"index"`
}

type mutedPayload struct {
	Muted bool `json:"muted"`
}

type embedCreatePayload struct {
	VideoID  string        `json:"video_id"`
	Iframe   player.Handle `json:"iframe"`
	Muted    bool          `json:"muted"`
	Autoplay bool          `json:"autoplay"`
}

type modulePayload struct {
	Module string `json:"module"`
}

type captionPayload struct {
	LanguageCode string `json:"language_code"`
}

type backgroundPayload struct {
	Color string `json:"color"`
}

type errorPayload struct {
	Message string `json:"message"`
}
