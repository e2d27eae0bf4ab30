package redis

import (
	"context"
	"sync"
	"time"

	"brain-brawl-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions stay in a local map; timers and subscriber channels are
//     process-local and cannot round-trip through Redis.
//   - Redis carries liveness markers for the session and the player reverse
//     index, so an operator (or a sibling instance) can see who is playing
//     where.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
	byPlayer map[string]string
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
		byPlayer: make(map[string]string),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	ctx := context.Background()
	// best-effort liveness markers
	_ = s.client.Set(ctx, s.sessionKey(session.ID()), "1", s.ttl).Err()
	for _, playerID := range session.PlayerIDs() {
		s.byPlayer[playerID] = session.ID()
		_ = s.client.Set(ctx, s.playerKey(playerID), session.ID(), s.ttl).Err()
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
	ctx := context.Background()
	_ = s.client.Del(ctx, s.sessionKey(sessionID)).Err()
	for _, playerID := range session.PlayerIDs() {
		if s.byPlayer[playerID] == sessionID {
			delete(s.byPlayer, playerID)
			_ = s.client.Del(ctx, s.playerKey(playerID)).Err()
		}
	}
}

func (s *SessionStore) SessionOf(playerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID, ok := s.byPlayer[playerID]
	return sessionID, ok
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return "battle:session:" + sessionID
}

func (s *SessionStore) playerKey(playerID string) string {
	return "battle:player:" + playerID
}
