package store

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore keeps one file per key inside a directory. Writes go to a
// temporary file that is renamed into place, so readers never see a torn value.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	closed bool
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "file store: create %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "file store: read %s", key)
	}
	return string(b), true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	p := s.path(key)
	tmpPath := p + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(value), 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "file store: write %s", key)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		return errors.Wrapf(err, "file store: write %s", key)
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "file store: remove %s", key)
	}
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
