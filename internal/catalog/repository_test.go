package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"videowall/internal/platform/logger"
	"videowall/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.FileStore {
	t.Helper()
	s, err := storage.NewFileStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	return s
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingStore) Set(context.Context, string, []byte) error    { return errors.New("disk gone") }

func storedStreams(t *testing.T, s storage.Store) []Stream {
	t.Helper()
	b, err := s.Get(context.Background(), storage.KeyStreams)
	require.NoError(t, err)
	var out []Stream
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestNewRepository_defaults_when_empty(t *testing.T) {
	store := newStore(t)
	repo := NewRepository(context.Background(), store, logger.Discard())

	assert.Equal(t, DefaultStreams(), repo.List())
	assert.Equal(t, DefaultStreams(), storedStreams(t, store), "defaults should be persisted")

	auto := repo.AutoLoad()
	require.Len(t, auto, 1)
	assert.Equal(t, StreamID("default-hls-welt"), auto[0].ID)
}

func TestNewRepository_corrupt_falls_back_and_repersists(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set(context.Background(), storage.KeyStreams, []byte("{not json")))

	repo := NewRepository(context.Background(), store, logger.Discard())

	assert.Equal(t, DefaultStreams(), repo.List())
	assert.Equal(t, DefaultStreams(), storedStreams(t, store))
}

func TestNewRepository_read_error_uses_defaults(t *testing.T) {
	repo := NewRepository(context.Background(), failingStore{}, logger.Discard())
	assert.Len(t, repo.List(), len(DefaultStreams()))
}

func TestNewRepository_repairs_missing_ids(t *testing.T) {
	store := newStore(t)
	legacy := `[{"name":"Old","type":"hls","url":"https://a.example/x.m3u8"},{"id":"keep","name":"K","type":"youtube","url":"https://youtu.be/aqz-KE-bpKQ","isDefault":true}]`
	require.NoError(t, store.Set(context.Background(), storage.KeyStreams, []byte(legacy)))

	repo := NewRepository(context.Background(), store, logger.Discard())
	list := repo.List()
	require.Len(t, list, 2)
	assert.True(t, strings.HasPrefix(string(list[0].ID), "stream-"))
	assert.False(t, list[0].AutoLoad)
	assert.Equal(t, StreamID("keep"), list[1].ID)
	assert.True(t, list[1].AutoLoad)

	assert.Equal(t, list, storedStreams(t, store), "repaired ids should be persisted")
}

func TestRepository_Add(t *testing.T) {
	store := newStore(t)
	repo := NewRepository(context.Background(), store, logger.Discard())

	s, err := repo.Add(context.Background(), StreamInput{Name: "  Arte ", Kind: KindHLS, URL: "https://arte.example/live.m3u8"})
	require.NoError(t, err)
	assert.Equal(t, "Arte", s.Name)
	assert.NotEmpty(t, s.ID)

	got, ok := repo.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, s, got)
	assert.Contains(t, storedStreams(t, store), s)
}

func TestRepository_Add_validation(t *testing.T) {
	repo := NewRepository(context.Background(), newStore(t), logger.Discard())

	cases := map[string]StreamInput{
		"missing name": {Kind: KindHLS, URL: "https://a.example/x"},
		"missing url":  {Name: "A", Kind: KindHLS},
		"bad kind":     {Name: "A", Kind: "dash", URL: "https://a.example/x"},
		"relative url": {Name: "A", Kind: KindHLS, URL: "/live/index.m3u8"},
		"garbage url":  {Name: "A", Kind: KindHLS, URL: "not a url"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Add(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidStream)
		})
	}
	assert.Len(t, repo.List(), len(DefaultStreams()), "rejected input must not reach the catalog")
}

func TestRepository_Update_keeps_id(t *testing.T) {
	repo := NewRepository(context.Background(), newStore(t), logger.Discard())

	s, err := repo.Update(context.Background(), "default-hls-ntv", StreamInput{Name: "NTV", Kind: KindHLS, URL: "https://ntv.example/master.m3u8", AutoLoad: true})
	require.NoError(t, err)
	assert.Equal(t, StreamID("default-hls-ntv"), s.ID)
	assert.Equal(t, "NTV", s.Name)
	assert.True(t, s.AutoLoad)

	_, err = repo.Update(context.Background(), "missing", StreamInput{Name: "x", Kind: KindHLS, URL: "https://x.example"})
	assert.ErrorIs(t, err, ErrStreamNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo := NewRepository(context.Background(), newStore(t), logger.Discard())

	require.NoError(t, repo.Delete(context.Background(), "default-yt-ed"))
	_, ok := repo.Get("default-yt-ed")
	assert.False(t, ok)

	assert.ErrorIs(t, repo.Delete(context.Background(), "default-yt-ed"), ErrStreamNotFound)
}

func TestRepository_SetAutoLoad(t *testing.T) {
	store := newStore(t)
	repo := NewRepository(context.Background(), store, logger.Discard())

	require.NoError(t, repo.SetAutoLoad(context.Background(), "default-yt-bbb", true))
	require.NoError(t, repo.SetAutoLoad(context.Background(), "default-hls-welt", false))

	auto := repo.AutoLoad()
	require.Len(t, auto, 1)
	assert.Equal(t, StreamID("default-yt-bbb"), auto[0].ID)

	assert.ErrorIs(t, repo.SetAutoLoad(context.Background(), "nope", true), ErrStreamNotFound)
}

func TestRepository_write_failure_keeps_memory_state(t *testing.T) {
	repo := NewRepository(context.Background(), failingStore{}, logger.Discard())

	s, err := repo.Add(context.Background(), StreamInput{Name: "A", Kind: KindHLS, URL: "https://a.example/x.m3u8"})
	require.NoError(t, err)
	_, ok := repo.Get(s.ID)
	assert.True(t, ok)
}
