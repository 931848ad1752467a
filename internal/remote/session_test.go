package remote

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videowall/internal/catalog"
	"videowall/internal/platform/logger"
	"videowall/internal/player"
	"videowall/internal/wall"
)

type staticCatalog []catalog.Stream

func (c staticCatalog) AutoLoad() []catalog.Stream {
	var out []catalog.Stream
	for _, s := range c {
		if s.AutoLoad {
			out = append(out, s)
		}
	}
	return out
}

func (c staticCatalog) Get(id catalog.StreamID) (catalog.Stream, bool) {
	for _, s := range c {
		if s.ID == id {
			return s, true
		}
	}
	return catalog.Stream{}, false
}

type nopLayout struct{}

func (nopLayout) LoadOrder(context.Context) ([]catalog.StreamID, bool, error) { return nil, false, nil }
func (nopLayout) SaveOrder(context.Context, []catalog.StreamID) error         { return nil }

// newLocalSession returns a session with no connection. Commands collect in
// its outbound queue.
func newLocalSession(t *testing.T, streams ...catalog.Stream) *Session {
	t.Helper()
	s := newSession(context.Background(), nil, logger.Discard())
	s.out = make(chan []byte, 1024)
	s.wall = wall.New(wall.Config{
		Surface:   s,
		Backend:   s,
		Catalog:   staticCatalog(streams),
		Layout:    nopLayout{},
		Scheduler: s.loop,
		Log:       s.log,
	})
	return s
}

func drain(t *testing.T, s *Session) []Envelope {
	t.Helper()
	var out []Envelope
	for {
		select {
		case b := <-s.out:
			var env Envelope
			require.NoError(t, json.Unmarshal(b, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func types(envs []Envelope) []string {
	out := make([]string, len(envs))
	for i, e := range envs {
		out[i] = e.Type
	}
	return out
}

func event(t *testing.T, typ, target string, payload any) Envelope {
	t.Helper()
	env := Envelope{Type: typ, Target: target}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		env.Payload = raw
	}
	return env
}

var testStream = catalog.Stream{ID: "s1", Name: "One", Kind: catalog.KindHLS, URL: "https://example.com/one.m3u8"}

func TestSession_fatalStreamErrorShowsInlineError(t *testing.T) {
	s := newLocalSession(t, testStream)
	id, ok := s.wall.SelectStream(context.Background(), "s1")
	require.True(t, ok)
	drain(t, s)

	require.NoError(t, s.dispatch(event(t, EventHLSError, string(id), player.EngineError{Type: player.ErrorNetwork, Details: "manifestLoadError", Fatal: true})))
	assert.Equal(t, []string{CmdHLSStartLoad}, types(drain(t, s)))

	require.NoError(t, s.dispatch(event(t, EventHLSError, string(id), player.EngineError{Type: player.ErrorMedia, Fatal: true})))
	assert.Equal(t, []string{CmdHLSRecover}, types(drain(t, s)))

	require.NoError(t, s.dispatch(event(t, EventHLSUnsupported, string(id), nil)))
	got := drain(t, s)
	assert.Equal(t, []string{CmdHLSDestroy, CmdTileError}, types(got))
	assert.Contains(t, string(got[1].Payload), "HLS not supported")
	assert.Empty(t, s.streams, "destroyed engines are forgotten")

	require.NoError(t, s.dispatch(event(t, EventHLSManifestParsed, string(id), nil)))
	assert.Empty(t, drain(t, s))
}

func TestSession_subtitleTracksMirrored(t *testing.T) {
	s := newLocalSession(t, testStream)
	s.wall.SetSubtitles(true)
	id, _ := s.wall.SelectStream(context.Background(), "s1")
	drain(t, s)

	tracks := subtitleTracksPayload{Tracks: []player.SubtitleTrack{{ID: 0, Name: "English", Lang: "en"}}}
	require.NoError(t, s.dispatch(event(t, EventHLSSubtitleTracks, string(id), tracks)))
	got := drain(t, s)
	require.Equal(t, []string{CmdHLSSubtitleTrack}, types(got))
	assert.JSONEq(t, `{"index":0}`, string(got[0].Payload))
}

func TestSession_fullscreenChange(t *testing.T) {
	s := newLocalSession(t, testStream)
	id, _ := s.wall.SelectStream(context.Background(), "s1")
	require.NoError(t, s.dispatch(event(t, EventTileDoubleClick, string(id), nil)))
	got := drain(t, s)
	assert.Contains(t, types(got), CmdFullscreenRequest)

	require.NoError(t, s.dispatch(event(t, EventFullscreenChange, "", fullscreenPayload{Element: mediaHandle(string(id))})))
	h, fs := s.FullscreenElement()
	assert.True(t, fs)
	assert.Equal(t, mediaHandle(string(id)), h)

	require.NoError(t, s.dispatch(event(t, EventFullscreenChange, "", fullscreenPayload{})))
	_, fs = s.FullscreenElement()
	assert.False(t, fs)
	got = drain(t, s)
	assert.Contains(t, types(got), CmdMediaMuted, "leaving fullscreen mutes the tile")
}

func TestSession_reorderKeepsKnownWrappers(t *testing.T) {
	s := newLocalSession(t)
	s.order = []string{"a", "b", "c"}

	s.reorder([]string{"c", "ghost", "a"})
	assert.Equal(t, []string{"c", "a", "b"}, s.TileOrder())
}

func TestSession_badPayload(t *testing.T) {
	s := newLocalSession(t)
	err := s.dispatch(Envelope{Type: EventViewportResize, Payload: json.RawMessage(`"wide"`)})
	assert.Error(t, err)
	err = s.dispatch(Envelope{Type: EventGridReordered})
	assert.Error(t, err)
}

func TestSession_embedLoadModuleOnce(t *testing.T) {
	s := newLocalSession(t)
	p, err := s.NewEmbedPlayer("m1", "aqz-KE-bpKQ", nil)
	require.NoError(t, err)
	assert.NoError(t, p.LoadModule("captions"))
	assert.Error(t, p.LoadModule("captions"))
	_, err = s.NewEmbedPlayer("m1", "aqz-KE-bpKQ", nil)
	assert.Error(t, err)
}

var embedStream = catalog.Stream{ID: "y1", Name: "Clip", Kind: catalog.KindYouTube, URL: "https://www.youtube.com/watch?v=aqz-KE-bpKQ"}

func find(envs []Envelope, typ, target string) (Envelope, bool) {
	for _, e := range envs {
		if e.Type == typ && e.Target == target {
			return e, true
		}
	}
	return Envelope{}, false
}

func TestSession_rendererUnmuteKeepsAudioExclusive(t *testing.T) {
	ctx := context.Background()
	s := newLocalSession(t, testStream, embedStream)
	require.NoError(t, s.dispatch(event(t, EventEmbedAPIReady, "", nil)))
	hls, _ := s.wall.SelectStream(ctx, "s1")
	yt, _ := s.wall.SelectStream(ctx, "y1")
	require.NoError(t, s.dispatch(event(t, EventHLSManifestParsed, string(hls), nil)))
	require.NoError(t, s.dispatch(event(t, EventEmbedReady, string(yt), nil)))
	require.NoError(t, s.dispatch(event(t, EventTileClick, string(hls), nil)))
	drain(t, s)

	require.NoError(t, s.dispatch(event(t, EventEmbedMuted, string(yt), mutedPayload{Muted: false})))
	got := drain(t, s)
	mute, ok := find(got, CmdMediaMuted, string(hls))
	require.True(t, ok, "the audible stream is muted: %v", types(got))
	assert.JSONEq(t, `{"muted":true}`, string(mute.Payload))
	active, ok := find(got, CmdTileActive, string(yt)+"-wrapper")
	require.True(t, ok)
	assert.JSONEq(t, `{"active":true}`, string(active.Payload))
	assert.Len(t, s.wall.Registry().Audible(), 1)

	require.NoError(t, s.dispatch(event(t, EventTileClick, string(hls), nil)))
	got = drain(t, s)
	mute, ok = find(got, CmdEmbedMute, string(yt))
	require.True(t, ok, "the embedded player is muted again: %v", types(got))
	assert.JSONEq(t, `{"muted":true}`, string(mute.Payload))
	assert.Equal(t, []wall.InstanceID{hls}, s.wall.Registry().Audible())
}

func TestSession_rendererMediaMuteMirrored(t *testing.T) {
	s := newLocalSession(t, testStream)
	id, _ := s.wall.SelectStream(context.Background(), "s1")
	require.NoError(t, s.dispatch(event(t, EventHLSManifestParsed, string(id), nil)))
	require.NoError(t, s.dispatch(event(t, EventTileClick, string(id), nil)))
	drain(t, s)

	require.NoError(t, s.dispatch(event(t, EventMediaMutedChanged, string(id), mutedPayload{Muted: true})))
	got := drain(t, s)
	active, ok := find(got, CmdTileActive, string(id)+"-wrapper")
	require.True(t, ok)
	assert.JSONEq(t, `{"active":false}`, string(active.Payload))
	assert.Empty(t, s.wall.Registry().Audible())

	assert.NoError(t, s.dispatch(Envelope{Type: EventEmbedMuted, Target: "ghost"}), "events for unknown players are ignored")
	assert.Error(t, s.dispatch(Envelope{Type: EventMediaMutedChanged, Target: string(id)}))
}
