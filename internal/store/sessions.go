package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps conversation history in process memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	order    []string // session ids by creation
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string][]Turn),
		now:      time.Now,
	}
}

// Append records a turn, creating the session on first use. A missing turn
// id or timestamp is filled in.
func (s *SessionStore) Append(sessionID string, turn Turn) Turn {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.order = append(s.order, sessionID)
	}
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	return turn
}

// Get returns a copy of a session's turns, empty when unknown.
func (s *SessionStore) Get(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Turn{}, s.sessions[sessionID]...)
}

// All returns every session in creation order.
func (s *SessionStore) All() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Session{ID: id, Turns: append([]Turn{}, s.sessions[id]...)})
	}
	return out
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	delete(s.sessions, sessionID)
	for i, id := range s.order {
		if id == sessionID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Reset drops every session.
func (s *SessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string][]Turn)
	s.order = nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
