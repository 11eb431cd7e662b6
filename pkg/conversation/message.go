// Package conversation provides the data model for chat transcripts.
//
// A Conversation is the ordered, append-only list of Turns that the user is
// currently working with. Once a conversation is promoted it is tracked as a
// HistoryEntry inside a HistoryIndex, which is what gets persisted.
package conversation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrEmptyText = errors.New("turn text is empty")

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"

	// senderBot is what older transcripts stored for assistant turns.
	senderBot Sender = "bot"
)

func (s *Sender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Sender(raw) {
	case SenderUser:
		*s = SenderUser
	case SenderAssistant, senderBot:
		*s = SenderAssistant
	default:
		return fmt.Errorf("unknown sender %q", raw)
	}
	return nil
}

// Turn is a single message. Turns are values and are never edited after creation.
type Turn struct {
	Sender Sender `json:"sender" yaml:"sender"`
	Text   string `json:"text" yaml:"text"`
}

// NewUserTurn builds a user turn, refusing whitespace-only input.
func NewUserTurn(text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyText
	}
	return Turn{Sender: SenderUser, Text: text}, nil
}

func NewAssistantTurn(text string) Turn {
	return Turn{Sender: SenderAssistant, Text: text}
}

// View renders the turn as one transcript line.
func (t Turn) View() string {
	return fmt.Sprintf("[%s]: %s", t.Sender, strings.TrimRight(t.Text, "\n"))
}

type Conversation []Turn

// Clone returns a copy that shares no backing array with c.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return Conversation{}
	}
	ret := make(Conversation, len(c))
	copy(ret, c)
	return ret
}

// FirstUserTurn returns the first turn authored by the user, if any.
func (c Conversation) FirstUserTurn() (Turn, bool) {
	for _, t := range c {
		if t.Sender == SenderUser {
			return t, true
		}
	}
	return Turn{}, false
}
