package memory

import (
	"sync"

	"brain-brawl-service/internal/app"
)

// SessionStore is the in-memory implementation of app.SessionRepository.
// It keeps the session map and the player-to-session reverse index in sync:
// removing a session always removes its players' reverse entries, unless a
// newer session (a rematch) already claimed them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
	byPlayer map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
		byPlayer: make(map[string]string),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	for _, playerID := range session.PlayerIDs() {
		s.byPlayer[playerID] = session.ID()
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	delete(s.sessions, sessionID)
	for _, playerID := range session.PlayerIDs() {
		if s.byPlayer[playerID] == sessionID {
			delete(s.byPlayer, playerID)
		}
	}
}

func (s *SessionStore) SessionOf(playerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID, ok := s.byPlayer[playerID]
	return sessionID, ok
}
