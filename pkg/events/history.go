package events

import (
	"encoding/json"

	"github.com/go-go-golems/confab/pkg/conversation"
	"github.com/pkg/errors"
)

const TopicHistory = "confab.history"

type EventType string

const (
	EventTypePromoted EventType = "promoted"
	EventTypeUpdated  EventType = "updated"
	EventTypeDeleted  EventType = "deleted"
	EventTypeReset    EventType = "reset"
	EventTypeSelected EventType = "selected"
	// EventTypeFailed marks an exchange where the endpoint failed and the
	// error turn was substituted.
	EventTypeFailed EventType = "failed"
)

// HistoryEvent describes a change to the session's conversations.
type HistoryEvent struct {
	Type  EventType       `json:"type"`
	ID    conversation.ID `json:"id,omitempty"`
	Title string          `json:"title,omitempty"`
	Turns int             `json:"turns"`
	Error string          `json:"error,omitempty"`
}

func NewHistoryEventFromJSON(b []byte) (*HistoryEvent, error) {
	e := &HistoryEvent{}
	if err := json.Unmarshal(b, e); err != nil {
		return nil, errors.Wrap(err, "decode history event")
	}
	if e.Type == "" {
		return nil, errors.New("history event without type")
	}
	return e, nil
}
