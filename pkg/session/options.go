package session

import (
	"time"

	"github.com/go-go-golems/confab/pkg/auth"
	"github.com/go-go-golems/confab/pkg/conversation"
	"github.com/go-go-golems/confab/pkg/events"
)

type ManagerOption func(*Manager)

func WithIDGenerator(ids conversation.IDGenerator) ManagerOption {
	return func(m *Manager) {
		m.ids = ids
	}
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithPublisher makes the manager emit events.HistoryEvent on every change.
func WithPublisher(p *events.PublisherManager) ManagerOption {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithAuthHolder lets the manager expose the signed-in user and forget it on logout.
func WithAuthHolder(h *auth.Holder) ManagerOption {
	return func(m *Manager) {
		m.auth = h
	}
}
