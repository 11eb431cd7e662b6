package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-go-golems/confab/pkg/store"
	"github.com/stretchr/testify/require"
)

func TestHolder_LoadSaveClear(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHolder(s)

	u, err := h.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, u)
	_, ok := h.Current()
	require.False(t, ok)

	require.NoError(t, h.Save(ctx, User{Name: "ada", Email: "ada@example.com"}))
	cur, ok := h.Current()
	require.True(t, ok)
	require.Equal(t, "A", cur.Initial())

	fresh := NewHolder(s)
	u, err = fresh.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, &User{Name: "ada", Email: "ada@example.com"}, u)

	fresh.Clear()
	_, ok = fresh.Current()
	require.False(t, ok)
}

func TestHolder_CorruptRecordIsIgnored(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, store.KeyUser, "{broken"))

	u, err := NewHolder(s).Load(ctx)
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestUser_InitialOfEmptyName(t *testing.T) {
	require.Equal(t, "?", User{}.Initial())
	require.Equal(t, "É", User{Name: "élodie"}.Initial())
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if r.URL.Path != "/login" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Login successful","name":"Ada","email":"` + req.Email + `"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	u, err := c.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, User{Name: "Ada", Email: "ada@example.com"}, u)

	_, err = c.Login(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestClient_SignupDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"User already exists"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).Signup(context.Background(), "Ada", "ada@example.com", "secret")
	require.ErrorIs(t, err, ErrUserExists)
}
