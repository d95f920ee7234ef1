// Package session holds per-login state that never reaches the ledger document:
// the draft carts a user fills before submitting requests.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/stock-ledger/internal/domain/ledger"
	"github.com/example/stock-ledger/internal/infrastructure/store"
)

var (
	ErrEventRequired   = errors.New("an event is required for OUT lines")
	ErrLineNotFound    = errors.New("draft line not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the context of one login.
type Session struct {
	ID       string
	Username string
	Role     store.Role

	mu        sync.Mutex
	drafts    map[store.RequestType][]ledger.RequestLine
	expiresAt time.Time
}

func newSession(username string, role store.Role) *Session {
	return &Session{
		ID:       uuid.New().String(),
		Username: username,
		Role:     role,
		drafts:   make(map[store.RequestType][]ledger.RequestLine),
	}
}

// AddLine appends a draft line to the cart of the given type. IN lines never carry an
// event; OUT lines must.
func (s *Session) AddLine(reqType store.RequestType, item string, qty int, event string) (ledger.RequestLine, error) {
	if !reqType.Valid() {
		return ledger.RequestLine{}, ledger.ErrInvalidRequestType
	}
	if strings.TrimSpace(item) == "" {
		return ledger.RequestLine{}, ledger.ErrInvalidName
	}
	if qty < 1 {
		return ledger.RequestLine{}, ledger.ErrInvalidQuantity
	}

	line := ledger.RequestLine{Item: item, Qty: qty, Event: store.NoEvent}
	if reqType == store.RequestOut {
		event = strings.TrimSpace(event)
		if event == "" || event == store.NoEvent {
			return ledger.RequestLine{}, ErrEventRequired
		}
		line.Event = event
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[reqType] = append(s.drafts[reqType], line)
	return line, nil
}

// RemoveLine deletes the line at the 1-based position n.
func (s *Session) RemoveLine(reqType store.RequestType, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.drafts[reqType]
	if n < 1 || n > len(lines) {
		return ErrLineNotFound
	}
	s.drafts[reqType] = append(lines[:n-1:n-1], lines[n:]...)
	return nil
}

// Lines returns a copy of the cart of the given type.
func (s *Session) Lines(reqType store.RequestType) []ledger.RequestLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.RequestLine{}, s.drafts[reqType]...)
}

// Clear empties the cart of the given type.
func (s *Session) Clear(reqType store.RequestType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, reqType)
}

// ExpireAt sets when the session ends on its own, normally the expiry of the token
// issued for it. A zero time means it lasts until dropped.
func (s *Session) ExpireAt(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = at
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// Registry tracks live sessions by id. Dropping a session ends it, and so does
// reaching its expiry.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session), now: time.Now}
}

// Open starts a new session for an authenticated user. Expired sessions are swept
// on the way.
func (r *Registry) Open(username string, role store.Role) *Session {
	s := newSession(username, role)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, existing := range r.sessions {
		if existing.expired(now) {
			delete(r.sessions, id)
		}
	}
	r.sessions[s.ID] = s
	return s
}

// Get returns a live session. An expired one is evicted and reported as not found.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.expired(r.now()) {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Drop ends a session and discards its drafts. Unknown ids are ignored.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of tracked sessions, including expired ones not yet swept.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
