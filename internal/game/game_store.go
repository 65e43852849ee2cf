// internal/game/game_store.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore tracks the live sessions, one per UI mount, in memory only.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Client
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Client),
	}
}

func (s *SessionStore) Add(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.ID()] = c
}

func (s *SessionStore) Get(id uuid.UUID) (*Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, exists := s.sessions[id]
	return c, exists
}

// Remove closes the session and forgets it.
func (s *SessionStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	c, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		c.Close()
	}
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CloseAll closes and forgets every session, typically on shutdown.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[uuid.UUID]*Client)
	s.mu.Unlock()
	for _, c := range all {
		c.Close()
	}
}
