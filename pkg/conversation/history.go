package conversation

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const (
	TitleMaxLength  = 30
	TitleEllipsis   = "..."
	untitledDefault = "New chat"
)

// TitleFromText derives a history title from the first user message.
// Length is counted in runes so multi-byte text is never cut mid-character.
func TitleFromText(text string) string {
	runes := []rune(text)
	if len(runes) <= TitleMaxLength {
		return text
	}
	return string(runes[:TitleMaxLength]) + TitleEllipsis
}

// HistoryEntry is a persisted, named snapshot of a conversation.
type HistoryEntry struct {
	ID        ID           `json:"id" yaml:"id"`
	Title     string       `json:"title" yaml:"title"`
	Messages  Conversation `json:"messages" yaml:"messages"`
	CreatedAt time.Time    `json:"createdAt" yaml:"createdAt"`
}

// UnmarshalJSON reads createdAt, falling back to the timestamp field older
// transcripts were stored with.
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	type plain HistoryEntry
	var raw struct {
		plain
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = HistoryEntry(raw.plain)
	if e.CreatedAt.IsZero() && raw.Timestamp != nil {
		e.CreatedAt = *raw.Timestamp
	}
	return nil
}

// NewHistoryEntry promotes c into an entry. The title comes from the first
// user turn; c is copied.
func NewHistoryEntry(id ID, c Conversation, createdAt time.Time) HistoryEntry {
	title := untitledDefault
	if t, ok := c.FirstUserTurn(); ok {
		title = TitleFromText(t.Text)
	}
	return HistoryEntry{
		ID:        id,
		Title:     title,
		Messages:  c.Clone(),
		CreatedAt: createdAt,
	}
}

func (e HistoryEntry) Clone() HistoryEntry {
	e.Messages = e.Messages.Clone()
	return e
}

// HistoryIndex is ordered newest first and unique by id.
type HistoryIndex []HistoryEntry

func (h HistoryIndex) Find(id ID) (HistoryEntry, bool) {
	for _, e := range h {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return HistoryEntry{}, false
}

func (h HistoryIndex) Contains(id ID) bool {
	for _, e := range h {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Prepend returns a new index with e at the front. An existing entry with the
// same id is dropped so ids stay unique.
func (h HistoryIndex) Prepend(e HistoryEntry) HistoryIndex {
	ret := make(HistoryIndex, 0, len(h)+1)
	ret = append(ret, e.Clone())
	for _, existing := range h {
		if existing.ID != e.ID {
			ret = append(ret, existing.Clone())
		}
	}
	return ret
}

// Replace returns a new index where the entry with id carries messages.
// Title and CreatedAt are left untouched.
func (h HistoryIndex) Replace(id ID, messages Conversation) (HistoryIndex, bool) {
	found := false
	ret := h.Clone()
	for i := range ret {
		if ret[i].ID == id {
			ret[i].Messages = messages.Clone()
			found = true
		}
	}
	return ret, found
}

func (h HistoryIndex) Remove(id ID) (HistoryIndex, bool) {
	found := false
	ret := make(HistoryIndex, 0, len(h))
	for _, e := range h {
		if e.ID == id {
			found = true
			continue
		}
		ret = append(ret, e.Clone())
	}
	return ret, found
}

func (h HistoryIndex) Clone() HistoryIndex {
	ret := make(HistoryIndex, len(h))
	for i, e := range h {
		ret[i] = e.Clone()
	}
	return ret
}

func EncodeHistory(h HistoryIndex) (string, error) {
	if h == nil {
		h = HistoryIndex{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return "", errors.Wrap(err, "encode history")
	}
	return string(b), nil
}

// DecodeHistory parses a persisted index. Entries with a repeated id are
// collapsed onto the first occurrence, which is the newest one.
func DecodeHistory(data string) (HistoryIndex, error) {
	var raw HistoryIndex
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, errors.Wrap(err, "decode history")
	}
	seen := make(map[ID]struct{}, len(raw))
	ret := make(HistoryIndex, 0, len(raw))
	for _, e := range raw {
		if e.ID.IsZero() {
			return nil, errors.New("decode history: entry without id")
		}
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		if e.Messages == nil {
			e.Messages = Conversation{}
		}
		ret = append(ret, e)
	}
	return ret, nil
}
