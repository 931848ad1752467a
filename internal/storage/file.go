package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/spf13/afero"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStore keeps one JSON file per key under a directory of an afero filesystem.
type FileStore struct {
	mu  sync.Mutex
	fs  afero.Afero
	dir string
}

// NewFileStore returns a store rooted at dir on fs, creating dir if needed.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	a := afero.Afero{Fs: fs}
	if err := a.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{fs: a, dir: dir}, nil
}

// NewOSFileStore is NewFileStore on the operating system filesystem.
func NewOSFileStore(dir string) (*FileStore, error) {
	return NewFileStore(afero.NewOsFs(), dir)
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get implements Store.Get.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.fs.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return b, nil
}

// Set implements Store.Set. The value is written to a temp file and renamed
// over the target so readers never see a partial document.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := p + ".tmp"
	if err := s.fs.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
