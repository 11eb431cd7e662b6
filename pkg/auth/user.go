package auth

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/go-go-golems/confab/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// User is the authenticated-user record. It is only read for display.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Initial returns the upper-cased first letter of the name, used as an avatar.
func (u User) Initial() string {
	r := []rune(strings.TrimSpace(u.Name))
	if len(r) == 0 {
		return "?"
	}
	return strings.ToUpper(string(r[0]))
}

// Holder keeps the signed-in user, backed by store.KeyUser.
type Holder struct {
	mu    sync.RWMutex
	store store.Store
	user  *User
}

func NewHolder(s store.Store) *Holder {
	return &Holder{store: s}
}

// Load reads the persisted record. A missing or corrupt record leaves the
// holder signed out.
func (h *Holder) Load(ctx context.Context) (*User, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw, ok, err := h.store.Get(ctx, store.KeyUser)
	if err != nil {
		return nil, errors.Wrap(err, "load user")
	}
	h.user = nil
	if !ok {
		return nil, nil
	}
	u := &User{}
	if err := json.Unmarshal([]byte(raw), u); err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable user record")
		return nil, nil
	}
	h.user = u
	ret := *u
	return &ret, nil
}

func (h *Holder) Current() (User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return User{}, false
	}
	return *h.user, true
}

func (h *Holder) Save(ctx context.Context, u User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.store.Set(ctx, store.KeyUser, string(b)); err != nil {
		return errors.Wrap(err, "save user")
	}
	h.user = &u
	return nil
}

// Clear forgets the in-memory record. Removing it from the store is the
// session manager's logout, which wipes history alongside it.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.user = nil
}
