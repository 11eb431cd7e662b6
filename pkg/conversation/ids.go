package conversation

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON also accepts bare numbers, which is how millisecond
// timestamp ids were stored before ids became ULIDs.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = ID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// IDGenerator hands out history entry ids. Ids must sort by creation time and
// must not repeat, even for entries created within the same millisecond.
type IDGenerator interface {
	NewID(now time.Time) ID
}

type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	last    ulid.ULID
}

var _ IDGenerator = (*ULIDGenerator)(nil)

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *ULIDGenerator) NewID(now time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(now)
	// a clock that went backwards must not produce an id that sorts before the last one
	if ms < g.last.Time() {
		ms = g.last.Time()
	}
	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		// the monotonic reader overflowed within one millisecond, move to the next one
		id = ulid.MustNew(ms+1, g.entropy)
	}
	g.last = id
	return ID(id.String())
}
