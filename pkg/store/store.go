package store

import (
	"context"

	"github.com/pkg/errors"
)

// Keys owned by the session manager and the auth holder.
const (
	KeyHistory = "chatHistory"
	KeyUser    = "user"
)

var (
	ErrQuotaExceeded = errors.New("store quota exceeded")
	ErrClosed        = errors.New("store is closed")
	ErrEmptyKey      = errors.New("store key is empty")
)

// Store is a small durable key-value store holding serialized JSON blobs
// under fixed keys. Writes replace the whole value.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
