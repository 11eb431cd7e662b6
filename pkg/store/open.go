package store

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Open builds the backend named by kind. For the file backend path is a
// directory, for sqlite it is the database file.
func Open(kind string, path string) (Store, error) {
	switch Backend(strings.ToLower(kind)) {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(path)
	case BackendSQLite:
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "confab.db")
		}
		dsn, err := SQLiteDSNForFile(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("dsn", dsn).Msg("opening sqlite store")
		return NewSQLiteStore(dsn)
	default:
		return nil, errors.Errorf("unknown store backend %q", kind)
	}
}
