package conversation

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTitleFromText_Truncates(t *testing.T) {
	long := strings.Repeat("a", 45)
	title := TitleFromText(long)
	require.Equal(t, strings.Repeat("a", 30)+TitleEllipsis, title)

	short := strings.Repeat("b", 20)
	require.Equal(t, short, TitleFromText(short))

	exact := strings.Repeat("c", 30)
	require.Equal(t, exact, TitleFromText(exact))
}

func TestTitleFromText_CountsRunes(t *testing.T) {
	text := strings.Repeat("é", 31)
	require.Equal(t, strings.Repeat("é", 30)+TitleEllipsis, TitleFromText(text))
}

func TestNewUserTurn_RejectsBlank(t *testing.T) {
	_, err := NewUserTurn("")
	require.ErrorIs(t, err, ErrEmptyText)
	_, err = NewUserTurn("   \n\t")
	require.ErrorIs(t, err, ErrEmptyText)

	turn, err := NewUserTurn(" hi ")
	require.NoError(t, err)
	require.Equal(t, SenderUser, turn.Sender)
	require.Equal(t, " hi ", turn.Text)
}

func TestNewHistoryEntry_CopiesMessages(t *testing.T) {
	c := Conversation{
		NewAssistantTurn("welcome"),
		{Sender: SenderUser, Text: "What is the refund policy for damaged goods?"},
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewHistoryEntry("id-1", c, now)

	require.Equal(t, "What is the refund policy for ...", e.Title)
	require.Equal(t, now, e.CreatedAt)

	c[0] = NewAssistantTurn("changed")
	require.Equal(t, "welcome", e.Messages[0].Text)
}

func TestHistoryIndex_Mutations(t *testing.T) {
	var h HistoryIndex
	h = h.Prepend(HistoryEntry{ID: "1", Title: "one", Messages: Conversation{}})
	h = h.Prepend(HistoryEntry{ID: "2", Title: "two", Messages: Conversation{}})
	require.Equal(t, []ID{"2", "1"}, []ID{h[0].ID, h[1].ID})

	replaced, ok := h.Replace("1", Conversation{NewAssistantTurn("x")})
	require.True(t, ok)
	require.Len(t, replaced[1].Messages, 1)
	require.Empty(t, h[1].Messages)

	_, ok = h.Replace("missing", nil)
	require.False(t, ok)

	removed, ok := h.Remove("2")
	require.True(t, ok)
	require.Len(t, removed, 1)
	require.Len(t, h, 2)

	same, ok := h.Remove("missing")
	require.False(t, ok)
	require.Equal(t, h, same)
}

func TestHistoryIndex_PrependKeepsIDsUnique(t *testing.T) {
	h := HistoryIndex{{ID: "1", Title: "old"}}
	h = h.Prepend(HistoryEntry{ID: "1", Title: "new"})
	require.Len(t, h, 1)
	require.Equal(t, "new", h[0].Title)
}

func TestHistory_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 4, 10, 11, 12, 0, time.UTC)
	h := HistoryIndex{
		{ID: "b", Title: "Hi", Messages: Conversation{{SenderUser, "Hi"}, {SenderAssistant, "Hello!"}}, CreatedAt: created},
		{ID: "a", Title: "Track order", Messages: Conversation{{SenderUser, "Track order"}}, CreatedAt: created.Add(-time.Hour)},
	}
	encoded, err := EncodeHistory(h)
	require.NoError(t, err)

	decoded, err := DecodeHistory(encoded)
	require.NoError(t, err)
	require.Equal(t, h, decoded)
}

func TestDecodeHistory_LegacyFormat(t *testing.T) {
	legacy := `[{"id":1712345678901,"title":"Hi","messages":[{"sender":"user","text":"Hi"},{"sender":"bot","text":"Hello"}],"timestamp":"2024-04-05T10:00:00.000Z"}]`
	h, err := DecodeHistory(legacy)
	require.NoError(t, err)
	require.Len(t, h, 1)
	require.Equal(t, ID("1712345678901"), h[0].ID)
	require.Equal(t, SenderAssistant, h[0].Messages[1].Sender)
	require.Equal(t, time.Date(2024, 4, 5, 10, 0, 0, 0, time.UTC), h[0].CreatedAt.UTC())
}

func TestDecodeHistory_CreatedAtWinsOverTimestamp(t *testing.T) {
	h, err := DecodeHistory(`[{"id":"1","title":"x","createdAt":"2024-05-01T00:00:00Z","timestamp":"2020-01-01T00:00:00Z"}]`)
	require.NoError(t, err)
	require.Equal(t, 2024, h[0].CreatedAt.Year())
}

func TestDecodeHistory_Errors(t *testing.T) {
	_, err := DecodeHistory("{not json")
	require.Error(t, err)

	_, err = DecodeHistory(`[{"title":"no id"}]`)
	require.Error(t, err)

	_, err = DecodeHistory(`[{"id":"1","messages":[{"sender":"robot","text":"x"}]}]`)
	require.Error(t, err)
}

func TestDecodeHistory_CollapsesDuplicates(t *testing.T) {
	h, err := DecodeHistory(`[{"id":"1","title":"newest"},{"id":"1","title":"stale"},{"id":"2","title":"other"}]`)
	require.NoError(t, err)
	require.Len(t, h, 2)
	require.Equal(t, "newest", h[0].Title)
	require.NotNil(t, h[0].Messages)
}

func TestULIDGenerator_MonotonicWithinSameInstant(t *testing.T) {
	g := NewULIDGenerator()
	now := time.Now()

	ids := make([]string, 0, 100)
	seen := map[ID]bool{}
	for i := 0; i < 100; i++ {
		id := g.NewID(now)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		ids = append(ids, id.String())
	}
	require.True(t, sort.StringsAreSorted(ids))
}

func TestULIDGenerator_ClockGoingBackwards(t *testing.T) {
	g := NewULIDGenerator()
	now := time.Now()
	first := g.NewID(now)
	second := g.NewID(now.Add(-time.Minute))
	require.Less(t, first.String(), second.String())
}
