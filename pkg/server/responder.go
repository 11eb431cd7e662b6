package server

import (
	"context"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Responder produces the reply to message. history is the client's recent
// context, oldest first, and already ends with message itself.
type Responder interface {
	Respond(ctx context.Context, message string, history []Message) (string, error)
}

type ResponderFunc func(ctx context.Context, message string, history []Message) (string, error)

func (f ResponderFunc) Respond(ctx context.Context, message string, history []Message) (string, error) {
	return f(ctx, message, history)
}
