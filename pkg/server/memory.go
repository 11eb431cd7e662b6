package server

import (
	"sync"
)

const (
	DefaultMemorySize = 10
	DefaultClientID   = "default_user"
)

// Memory keeps the most recent messages per client.
type Memory struct {
	mu      sync.Mutex
	size    int
	clients map[string][]Message
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{
		size:    size,
		clients: map[string][]Message{},
	}
}

// Append records m for clientID and returns a copy of the retained window.
func (m *Memory) Append(clientID string, msg Message) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := append(m.clients[clientID], msg)
	if len(msgs) > m.size {
		msgs = append([]Message(nil), msgs[len(msgs)-m.size:]...)
	}
	m.clients[clientID] = msgs
	return append([]Message(nil), msgs...)
}

func (m *Memory) Window(clientID string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.clients[clientID]...)
}
