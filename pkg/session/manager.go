package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-go-golems/confab/pkg/auth"
	"github.com/go-go-golems/confab/pkg/conversation"
	"github.com/go-go-golems/confab/pkg/events"
	"github.com/go-go-golems/confab/pkg/remote"
	"github.com/go-go-golems/confab/pkg/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrorTurnText replaces the assistant reply when the endpoint fails.
const ErrorTurnText = "⚠️ Server error. Try again."

// Manager owns the active conversation, the history index and the rules that
// keep them in sync with the store.
//
// It guarantees:
//   - only one exchange is in flight at a time
//   - a conversation is promoted to a history entry at most once
//   - while a conversation is tracked, every change to it is written to the store
//   - the store is only ever written with the whole history index
type Manager struct {
	SessionID string

	store     store.Store
	endpoint  remote.Endpoint
	ids       conversation.IDGenerator
	now       func() time.Time
	publisher *events.PublisherManager
	auth      *auth.Holder

	mu       sync.Mutex
	activeID conversation.ID
	turns    conversation.Conversation
	history  conversation.HistoryIndex
	pending  bool
}

// State is a copy of the manager's state, safe to keep and read.
type State struct {
	ActiveID conversation.ID
	Turns    conversation.Conversation
	History  conversation.HistoryIndex
	Pending  bool
}

// Exchange is the outcome of one Submit call.
type Exchange struct {
	// Skipped is set when the input was blank and nothing happened.
	Skipped   bool
	User      conversation.Turn
	Assistant conversation.Turn
	// Failed is set when Assistant is the substituted error turn; RemoteErr
	// holds the endpoint's error for logging.
	Failed    bool
	RemoteErr error
	Promoted  bool
	ID        conversation.ID
}

func NewManager(s store.Store, endpoint remote.Endpoint, options ...ManagerOption) *Manager {
	ret := &Manager{
		SessionID: uuid.NewString(),
		store:     s,
		endpoint:  endpoint,
		turns:     conversation.Conversation{},
		history:   conversation.HistoryIndex{},
	}
	for _, option := range options {
		option(ret)
	}
	if ret.ids == nil {
		ret.ids = conversation.NewULIDGenerator()
	}
	if ret.now == nil {
		ret.now = time.Now
	}
	return ret
}

// Initialize loads the history index from the store and starts on an empty
// conversation. A missing or unreadable index yields an empty history.
func (m *Manager) Initialize(ctx context.Context) {
	history := conversation.HistoryIndex{}

	raw, ok, err := m.store.Get(ctx, store.KeyHistory)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("session_id", m.SessionID).Msg("could not read history, starting empty")
	case ok:
		decoded, err := conversation.DecodeHistory(raw)
		if err != nil {
			log.Warn().Err(err).Str("session_id", m.SessionID).Msg("discarding unreadable history")
		} else {
			history = decoded
		}
	}

	if m.auth != nil {
		if _, err := m.auth.Load(ctx); err != nil {
			log.Warn().Err(err).Msg("could not load user record")
		}
	}

	m.mu.Lock()
	m.history = history
	m.activeID = ""
	m.turns = conversation.Conversation{}
	m.pending = false
	m.mu.Unlock()

	log.Debug().
		Str("session_id", m.SessionID).
		Int("history_entries", len(history)).
		Msg("session initialized")
}

// Submit appends text as a user turn, asks the endpoint for a reply and
// appends that (or the error turn). Blank text is ignored. While an exchange
// is in flight a second Submit fails with ErrSubmissionPending.
//
// Endpoint failures are never returned; the only errors are
// ErrSubmissionPending and a non-fatal *PersistError.
func (m *Manager) Submit(ctx context.Context, text string) (Exchange, error) {
	if m == nil {
		return Exchange{}, ErrManagerNil
	}
	userTurn, err := conversation.NewUserTurn(text)
	if err != nil {
		return Exchange{Skipped: true}, nil
	}

	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return Exchange{}, ErrSubmissionPending
	}
	m.turns = append(m.turns.Clone(), userTurn)
	m.pending = true
	m.mu.Unlock()

	defer func() {
		// a panicking endpoint must not leave the session locked out
		m.mu.Lock()
		m.pending = false
		m.mu.Unlock()
	}()

	ret := Exchange{User: userTurn}

	reply, remoteErr := m.endpoint.Send(ctx, text)
	if remoteErr == nil && IsBlank(reply) {
		remoteErr = &remote.ServerError{Reason: "empty reply"}
	}
	if remoteErr != nil {
		log.Warn().
			Err(remoteErr).
			Str("session_id", m.SessionID).
			Msg("chat endpoint failed, substituting error turn")
		ret.Assistant = conversation.NewAssistantTurn(ErrorTurnText)
		ret.Failed = true
		ret.RemoteErr = remoteErr
	} else {
		ret.Assistant = conversation.NewAssistantTurn(reply)
	}

	m.mu.Lock()
	m.turns = append(m.turns, ret.Assistant)
	promoted, persistErr := m.syncLocked(ctx, "submit")
	ret.Promoted = promoted
	ret.ID = m.activeID
	evt := m.eventLocked(events.EventTypeUpdated)
	m.pending = false
	m.mu.Unlock()

	if promoted {
		evt.Type = events.EventTypePromoted
	}
	m.emit(evt)
	if ret.Failed {
		failed := evt
		failed.Type = events.EventTypeFailed
		failed.Error = remoteErr.Error()
		m.emit(failed)
	}

	return ret, persistErr
}

// StartNew leaves the current conversation for a fresh, empty one. An
// untracked conversation with content is promoted first so it is not lost.
func (m *Manager) StartNew(ctx context.Context) error {
	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return ErrSubmissionPending
	}
	var evts []events.HistoryEvent
	var err error
	if len(m.turns) > 0 && m.activeID.IsZero() {
		var promoted bool
		promoted, err = m.promoteLocked(ctx, "start-new")
		if promoted {
			evts = append(evts, m.eventLocked(events.EventTypePromoted))
		}
	}
	m.activeID = ""
	m.turns = conversation.Conversation{}
	evts = append(evts, m.eventLocked(events.EventTypeReset))
	m.mu.Unlock()

	m.emit(evts...)
	return err
}

// Select makes the history entry id the active conversation. The active turns
// are a copy of the entry. An unknown id leaves everything unchanged and
// returns false.
func (m *Manager) Select(ctx context.Context, id conversation.ID) (bool, error) {
	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return false, ErrSubmissionPending
	}
	entry, ok := m.history.Find(id)
	if !ok {
		m.mu.Unlock()
		return false, nil
	}

	var evts []events.HistoryEvent
	var err error
	if len(m.turns) > 0 && m.activeID.IsZero() {
		var promoted bool
		promoted, err = m.promoteLocked(ctx, "select")
		if promoted {
			evts = append(evts, m.eventLocked(events.EventTypePromoted))
		}
	}
	m.activeID = entry.ID
	m.turns = entry.Messages.Clone()
	evts = append(evts, m.eventLocked(events.EventTypeSelected))
	m.mu.Unlock()

	m.emit(evts...)
	return true, err
}

// Delete removes the history entry id and persists the index. Deleting the
// active conversation leaves an empty, untracked one. The removal only becomes
// visible once the write succeeded. Unknown ids are a no-op.
func (m *Manager) Delete(ctx context.Context, id conversation.ID) error {
	m.mu.Lock()
	if m.pending && id == m.activeID {
		m.mu.Unlock()
		return ErrSubmissionPending
	}
	updated, found := m.history.Remove(id)
	if !found {
		m.mu.Unlock()
		return nil
	}
	if err := m.writeLocked(ctx, updated); err != nil {
		m.mu.Unlock()
		return &PersistError{Op: "delete", Err: err}
	}
	m.history = updated
	if id == m.activeID {
		m.activeID = ""
		m.turns = conversation.Conversation{}
	}
	evt := m.eventLocked(events.EventTypeDeleted)
	evt.ID = id
	evt.Title = ""
	m.mu.Unlock()

	m.emit(evt)
	return nil
}

// Logout wipes the user record and the whole history from the store. The
// in-memory state is left alone; callers drop the manager afterwards. While an
// exchange is in flight it fails with ErrSubmissionPending, since the reply
// would write the history back.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return ErrSubmissionPending
	}

	var ret error
	for _, key := range []string{store.KeyUser, store.KeyHistory} {
		if err := m.store.Remove(ctx, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("could not remove key on logout")
			if ret == nil {
				ret = errors.Wrapf(err, "logout: remove %s", key)
			}
		}
	}
	if m.auth != nil {
		m.auth.Clear()
	}
	return ret
}

// User returns the signed-in user, if an auth holder was configured.
func (m *Manager) User() (auth.User, bool) {
	if m.auth == nil {
		return auth.User{}, false
	}
	return m.auth.Current()
}

func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		ActiveID: m.activeID,
		Turns:    m.turns.Clone(),
		History:  m.history.Clone(),
		Pending:  m.pending,
	}
}

func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// syncLocked mirrors the active turns into history: promotion for an
// untracked conversation, an in-place update for a tracked one.
func (m *Manager) syncLocked(ctx context.Context, op string) (bool, error) {
	if m.activeID.IsZero() {
		return m.promoteLocked(ctx, op)
	}
	updated, ok := m.history.Replace(m.activeID, m.turns)
	if !ok {
		// the entry is gone, track the conversation again under a new id
		log.Warn().Str("id", m.activeID.String()).Msg("active conversation missing from history, promoting again")
		m.activeID = ""
		return m.promoteLocked(ctx, op)
	}
	m.history = updated
	if err := m.writeLocked(ctx, m.history); err != nil {
		return false, m.persistFailed(op, err)
	}
	return false, nil
}

// promoteLocked turns the active conversation into a new history entry. A
// conversation without a user turn is not promoted.
func (m *Manager) promoteLocked(ctx context.Context, op string) (bool, error) {
	if _, ok := m.turns.FirstUserTurn(); !ok {
		return false, nil
	}
	now := m.now()
	entry := conversation.NewHistoryEntry(m.ids.NewID(now), m.turns, now)
	m.history = m.history.Prepend(entry)
	m.activeID = entry.ID

	log.Debug().
		Str("session_id", m.SessionID).
		Str("id", entry.ID.String()).
		Str("title", entry.Title).
		Msg("conversation promoted to history")

	if err := m.writeLocked(ctx, m.history); err != nil {
		return true, m.persistFailed(op, err)
	}
	return true, nil
}

func (m *Manager) writeLocked(ctx context.Context, h conversation.HistoryIndex) error {
	encoded, err := conversation.EncodeHistory(h)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, store.KeyHistory, encoded)
}

func (m *Manager) persistFailed(op string, err error) error {
	log.Warn().
		Err(err).
		Str("session_id", m.SessionID).
		Str("op", op).
		Msg("history write failed, keeping in-memory state")
	return &PersistError{Op: op, Err: err}
}

func (m *Manager) eventLocked(t events.EventType) events.HistoryEvent {
	evt := events.HistoryEvent{
		Type:  t,
		ID:    m.activeID,
		Turns: len(m.turns),
	}
	if e, ok := m.history.Find(m.activeID); ok {
		evt.Title = e.Title
	}
	return evt
}

func (m *Manager) emit(evts ...events.HistoryEvent) {
	if m.publisher == nil {
		return
	}
	for _, e := range evts {
		m.publisher.PublishBlind(e)
	}
}

// IsBlank reports whether text would be ignored by Submit.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
