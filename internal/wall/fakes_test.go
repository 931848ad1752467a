package wall

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"videowall/internal/catalog"
	"videowall/internal/platform/logger"
	"videowall/internal/player"
	"videowall/internal/player/playertest"
)

type fakeSurface struct {
	mounts     []Mount
	order      []string
	errors     map[string]string
	active     map[string]bool
	removed    []string
	cols, rows int
	gridCalls  int

	fullscreen player.Handle
	fsOn       bool
	fsRequests []player.Handle
	fsErr      error
	exits      int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{errors: map[string]string{}, active: map[string]bool{}}
}

func (s *fakeSurface) MountTile(m Mount) {
	s.mounts = append(s.mounts, m)
	s.order = append(s.order, m.WrapperID)
}

func (s *fakeSurface) ShowTileError(wrapperID, message string) { s.errors[wrapperID] = message }

func (s *fakeSurface) RemoveTile(wrapperID string) {
	s.removed = append(s.removed, wrapperID)
	delete(s.active, wrapperID)
	for i, w := range s.order {
		if w == wrapperID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *fakeSurface) SetActive(wrapperID string, active bool) {
	if active {
		s.active[wrapperID] = true
	} else {
		delete(s.active, wrapperID)
	}
}

func (s *fakeSurface) SetGrid(cols, rows int) {
	s.cols, s.rows = cols, rows
	s.gridCalls++
}

func (s *fakeSurface) TileOrder() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *fakeSurface) FullscreenElement() (player.Handle, bool) { return s.fullscreen, s.fsOn }

func (s *fakeSurface) RequestFullscreen(target player.Handle) error {
	s.fsRequests = append(s.fsRequests, target)
	if s.fsErr != nil {
		return s.fsErr
	}
	s.fullscreen, s.fsOn = target, true
	return nil
}

func (s *fakeSurface) ExitFullscreen() {
	s.exits++
	s.fullscreen, s.fsOn = "", false
}

func (s *fakeSurface) activeWrappers() []string {
	var out []string
	for w := range s.active {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

type fakeCatalog []catalog.Stream

func (c fakeCatalog) AutoLoad() []catalog.Stream {
	var out []catalog.Stream
	for _, s := range c {
		if s.AutoLoad {
			out = append(out, s)
		}
	}
	return out
}

func (c fakeCatalog) Get(id catalog.StreamID) (catalog.Stream, bool) {
	for _, s := range c {
		if s.ID == id {
			return s, true
		}
	}
	return catalog.Stream{}, false
}

type memLayout struct {
	order   []catalog.StreamID
	saved   bool
	saves   int
	loadErr error
	saveErr error
}

func (l *memLayout) LoadOrder(context.Context) ([]catalog.StreamID, bool, error) {
	if l.loadErr != nil {
		return nil, false, l.loadErr
	}
	return l.order, l.saved, nil
}

func (l *memLayout) SaveOrder(_ context.Context, ids []catalog.StreamID) error {
	l.saves++
	if l.saveErr != nil {
		return l.saveErr
	}
	l.order = append([]catalog.StreamID(nil), ids...)
	l.saved = true
	return nil
}

type countingRecorder struct {
	mounted, failed map[string]int
	focus, drained  int
}

func (r *countingRecorder) TileMounted(kind string) { r.mounted[kind]++ }
func (r *countingRecorder) TileFailed(kind string)  { r.failed[kind]++ }
func (r *countingRecorder) FocusChanged()           { r.focus++ }
func (r *countingRecorder) GateDrained(n int)       { r.drained += n }

var (
	streamA = catalog.Stream{ID: "a", Name: "Alpha", Kind: catalog.KindHLS, URL: "https://example.com/a.m3u8"}
	streamB = catalog.Stream{ID: "b", Name: "Bravo", Kind: catalog.KindHLS, URL: "https://example.com/b.m3u8"}
	streamC = catalog.Stream{ID: "c", Name: "Charlie", Kind: catalog.KindYouTube, URL: "https://www.youtube.com/watch?v=aqz-KE-bpKQ"}
	streamD = catalog.Stream{ID: "d", Name: "Delta", Kind: catalog.KindYouTube, URL: "https://youtu.be/dQw4w9WgXcQ"}
	streamE = catalog.Stream{ID: "e", Name: "Echo", Kind: catalog.KindYouTube, URL: "https://www.youtube.com/embed/jNQXAC9IVRw"}
)

type fixture struct {
	surface *fakeSurface
	backend *playertest.Backend
	sched   *playertest.Scheduler
	layout  *memLayout
	rec     *countingRecorder
	wall    *Wall
	ctx     context.Context
}

func newFixture(t *testing.T, streams ...catalog.Stream) *fixture {
	t.Helper()
	f := &fixture{
		surface: newFakeSurface(),
		backend: playertest.NewBackend(),
		sched:   &playertest.Scheduler{},
		layout:  &memLayout{},
		rec:     &countingRecorder{mounted: map[string]int{}, failed: map[string]int{}},
		ctx:     context.Background(),
	}
	n := 0
	f.wall = New(Config{
		Surface:   f.surface,
		Backend:   f.backend,
		Catalog:   fakeCatalog(streams),
		Layout:    f.layout,
		Scheduler: f.sched,
		Recorder:  f.rec,
		Log:       logger.Discard(),
		NewID: func() InstanceID {
			n++
			return InstanceID(fmt.Sprintf("player-%d", n))
		},
	})
	return f
}

// add creates a tile and makes its player ready.
func (f *fixture) add(t *testing.T, s catalog.Stream) InstanceID {
	t.Helper()
	id := f.wall.CreateTile(f.ctx, s)
	f.ready(t, id)
	return id
}

func (f *fixture) ready(t *testing.T, id InstanceID) {
	t.Helper()
	if e, ok := f.backend.Streams[string(id)]; ok {
		e.Events.ManifestParsed()
		return
	}
	if p, ok := f.backend.Embeds[string(id)]; ok {
		p.Events.PlayerReady()
		return
	}
	t.Fatalf("no player constructed for %s", id)
}

func (f *fixture) muted(t *testing.T, id InstanceID) bool {
	t.Helper()
	e, ok := f.wall.Registry().Get(id)
	if !ok {
		t.Fatalf("%s not registered", id)
	}
	return e.Adapter.IsMuted()
}

func wrapper(id InstanceID) string { return string(id) + "-wrapper" }

// checkSingleAudible asserts at most one audible adapter and that the
// indicator sits exactly on it.
func (f *fixture) checkSingleAudible(t *testing.T) {
	t.Helper()
	audible := f.wall.Registry().Audible()
	if len(audible) > 1 {
		t.Fatalf("more than one audible tile: %v", audible)
	}
	active := f.surface.activeWrappers()
	if len(audible) == 0 {
		if len(active) != 0 {
			t.Fatalf("indicator %v set with nothing audible", active)
		}
		return
	}
	if len(active) != 1 || active[0] != wrapper(audible[0]) {
		t.Fatalf("indicator %v does not match audible %s", active, audible[0])
	}
}
