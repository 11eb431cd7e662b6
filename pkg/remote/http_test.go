package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPEndpoint_Success(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "client-7", r.Header.Get("X-Client-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"Hello!"}`))
	}))
	defer srv.Close()

	e, err := NewHTTPEndpoint(srv.URL+"/", WithClientID("client-7"))
	require.NoError(t, err)

	reply, err := e.Send(context.Background(), "Hi")
	require.NoError(t, err)
	require.Equal(t, "Hello!", reply)
	require.Equal(t, "Hi", got.Message)
}

func TestHTTPEndpoint_FailuresAreUniform(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"500": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"404": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"no reply": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"answer":"x"}`))
		},
		"empty reply": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"reply":"  "}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			e, err := NewHTTPEndpoint(srv.URL)
			require.NoError(t, err)
			_, err = e.Send(context.Background(), "Hi")
			require.ErrorIs(t, err, ErrServerError)
		})
	}
}

func TestHTTPEndpoint_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e, err := NewHTTPEndpoint(url)
	require.NoError(t, err)
	_, err = e.Send(context.Background(), "Hi")
	require.ErrorIs(t, err, ErrServerError)
}

func TestHTTPEndpoint_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	e, err := NewHTTPEndpoint(srv.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	_, err = e.Send(context.Background(), "Hi")
	require.ErrorIs(t, err, ErrServerError)
}

func TestNewHTTPEndpoint_RequiresURL(t *testing.T) {
	_, err := NewHTTPEndpoint("  ")
	require.Error(t, err)
}

func TestEchoEndpoint(t *testing.T) {
	reply, err := NewEchoEndpoint().Send(context.Background(), "ping")
	require.NoError(t, err)
	require.Equal(t, "ping", reply)
}
