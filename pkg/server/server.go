package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-go-golems/confab/pkg/remote"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

const StatusRunning = "Backend is running"

// Server is the reference chat backend: /chat with per-client context, plus
// /signup, /login and a health check.
type Server struct {
	responder   Responder
	memory      *Memory
	users       *Users
	chatLog     *ChatLog
	corsOrigins []string
	now         func() time.Time
}

type Option func(*Server)

func WithResponder(r Responder) Option {
	return func(s *Server) {
		s.responder = r
	}
}

func WithMemory(m *Memory) Option {
	return func(s *Server) {
		s.memory = m
	}
}

// WithUsers enables /signup and /login.
func WithUsers(u *Users) Option {
	return func(s *Server) {
		s.users = u
	}
}

func WithChatLog(c *ChatLog) Option {
	return func(s *Server) {
		s.chatLog = c
	}
}

func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

func New(options ...Option) *Server {
	ret := &Server{
		responder: FAQResponder{},
		memory:    NewMemory(DefaultMemorySize),
		now:       time.Now,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// Handler returns the routed handler wrapped in CORS, recovery and logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(RecoverPanic)
	r.Use(LoggingMiddleware)

	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(remote.ChatPath, s.handleChat).Methods(http.MethodPost)
	if s.users != nil {
		r.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
		r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", remote.ClientIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("chat server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down chat server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusRunning})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req remote.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	clientID := strings.TrimSpace(r.Header.Get(remote.ClientIDHeader))
	if clientID == "" {
		clientID = DefaultClientID
	}

	history := s.memory.Append(clientID, Message{Role: RoleUser, Content: req.Message})
	reply, err := s.responder.Respond(r.Context(), req.Message, history)
	if err != nil {
		log.Error().Err(err).Str("client_id", clientID).Msg("responder failed")
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Chat error: %s", err))
		return
	}
	s.memory.Append(clientID, Message{Role: RoleAssistant, Content: reply})

	if err := s.chatLog.Record(s.now(), clientID, req.Message, reply); err != nil {
		log.Warn().Err(err).Msg("could not write chat log")
	}

	writeJSON(w, http.StatusOK, remote.ChatResponse{Reply: &reply})
}

type userResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rec, err := s.users.Create(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, ErrUserExists):
		writeDetail(w, http.StatusBadRequest, ErrUserExists.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("signup failed")
		writeDetail(w, http.StatusInternalServerError, "signup failed")
		return
	}

	log.Info().Uint("user_id", rec.ID).Msg("user signed up")
	writeJSON(w, http.StatusOK, userResponse{Message: "Signup successful", Name: rec.Name, Email: rec.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rec, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("login failed")
		writeDetail(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Message: "Login successful", Name: rec.Name, Email: rec.Email})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("could not write response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
