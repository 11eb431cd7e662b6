package store

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe Store kept entirely in memory. With a quota set
// it refuses writes that would grow the total stored size past the limit.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	quota  int
	closed bool
}

var _ Store = (*MemoryStore)(nil)

type MemoryStoreOption func(*MemoryStore)

// WithQuota limits the summed length of keys and values, in bytes.
func WithQuota(bytes int) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.quota = bytes
	}
}

func NewMemoryStore(options ...MemoryStoreOption) *MemoryStore {
	ret := &MemoryStore{
		values: map[string]string{},
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.quota > 0 {
		size := len(key) + len(value)
		for k, v := range s.values {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > s.quota {
			return ErrQuotaExceeded
		}
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
