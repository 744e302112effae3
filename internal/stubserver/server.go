// Package stubserver is an in-process fake of the SkillShikhi API, good
// enough for client tests and manual poking. It mirrors the real API's
// quirks on purpose: some routes wrap responses in a {success,data} envelope
// while others return bare JSON, conflicts surface as 400s with "already ..."
// messages, and user references are encoded differently per route.
package stubserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type user struct {
	ID   string
	Name string
}

type request struct {
	ID        string
	From      string
	To        string
	Status    string // pending, accepted, rejected
	CreatedAt time.Time
}

// Server holds the fake API state. Zero value is not usable; call New.
type Server struct {
	mu       sync.Mutex
	users    map[string]user
	tokens   map[string]string // token -> user ID
	friends  map[string]map[string]bool
	requests map[string]*request
	calls    map[string]int

	// Delay is added to every request when set.
	Delay time.Duration

	failures map[string]int
}

// New creates an empty fake API.
func New() *Server {
	return &Server{
		users:    make(map[string]user),
		tokens:   make(map[string]string),
		friends:  make(map[string]map[string]bool),
		requests: make(map[string]*request),
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}
}

// AddUser registers a user with a fixed password of "secret".
func (s *Server) AddUser(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = user{ID: id, Name: name}
}

// Authenticate issues a token for userID without going through login.
func (s *Server) Authenticate(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "tok-" + uuid.New().String()
	s.tokens[token] = userID
	return token
}

// SeedFriendship installs an accepted edge between a and b.
func (s *Server) SeedFriendship(a, b string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link(a, b)
}

// SeedRequest installs a pending request and returns its ID.
func (s *Server) SeedRequest(from, to string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.requests[id] = &request{ID: id, From: from, To: to, Status: "pending", CreatedAt: time.Now()}
	return id
}

// Calls reports how many times a route was hit, keyed "METHOD /path".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// FailNext makes the next n hits of a route return a 500.
func (s *Server) FailNext(route string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = n
}

func (s *Server) link(a, b string) {
	if s.friends[a] == nil {
		s.friends[a] = make(map[string]bool)
	}
	if s.friends[b] == nil {
		s.friends[b] = make(map[string]bool)
	}
	s.friends[a][b] = true
	s.friends[b][a] = true
}

func (s *Server) unlink(a, b string) {
	delete(s.friends[a], b)
	delete(s.friends[b], a)
}

// Handler returns the fake API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.observe)

	r.Post("/api/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/friends", s.handleLists)
		r.Post("/api/friends", s.handleSend)
		r.Put("/api/friends", s.handleRespond)
		r.Post("/api/friends/respond", s.handleRespondLegacy)
		r.Post("/api/friends/cancel", s.handleCancelByID)
		r.Post("/api/friends/cancel-request", s.handleCancelByTarget)
		r.Post("/api/friends/unfriend", s.handleUnfriend)
		r.Get("/api/friends/check/{id}", s.handleCheck)
		r.Get("/api/notifications", s.handleNotifications)
		r.Put("/api/notifications/read", s.handleNotificationsRead)
	})

	return r
}

// Serve runs the fake API on addr, for manual poking.
func (s *Server) Serve(addr string) error {
	log.Info().Str("addr", addr).Msg("stub API listening")
	return http.ListenAndServe(addr, s.Handler())
}

// observe counts calls, applies injected latency and failures.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.calls[route]++
		delay := s.Delay
		fail := false
		if n := s.failures[route]; n > 0 {
			s.failures[route] = n - 1
			fail = true
		}
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey string

const userKey ctxKey = "user"

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		s.mu.Lock()
		userID, ok := s.tokens[token]
		s.mu.Unlock()
		if header == "" || !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), userID)))
	})
}
