package app

import (
	"time"

	"brain-brawl-service/internal/domain"
)

// waiter is one entry in the matchmaking pool.
type waiter struct {
	playerID   string
	username   string
	character  string
	outbox     chan domain.Event
	enqueuedAt time.Time
}

// Matchmaker holds players waiting for an opponent, oldest first. It is not
// safe for concurrent use; the BattleService serializes access under its lock.
type Matchmaker struct {
	queue []*waiter
	byID  map[string]*waiter
}

func NewMatchmaker() *Matchmaker {
	return &Matchmaker{byID: make(map[string]*waiter)}
}

// Enqueue adds a player to the pool. Re-enqueuing an already-waiting player
// refreshes their entry in place instead of creating a duplicate, keeping
// their original position in line.
func (m *Matchmaker) Enqueue(playerID, username, character string, outbox chan domain.Event) {
	if w, ok := m.byID[playerID]; ok {
		w.username = username
		w.character = character
		w.outbox = outbox
		return
	}
	w := &waiter{
		playerID:   playerID,
		username:   username,
		character:  character,
		outbox:     outbox,
		enqueuedAt: time.Now(),
	}
	m.byID[playerID] = w
	m.queue = append(m.queue, w)
}

// Remove drops a player from the pool if present.
func (m *Matchmaker) Remove(playerID string) {
	if _, ok := m.byID[playerID]; !ok {
		return
	}
	delete(m.byID, playerID)
	for i, w := range m.queue {
		if w.playerID == playerID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
}

// TakePair removes and returns the two earliest-waiting players. Both leave
// the pool atomically with session creation, so neither can be matched twice.
func (m *Matchmaker) TakePair() (first, second *waiter, ok bool) {
	if len(m.queue) < 2 {
		return nil, nil, false
	}
	first, second = m.queue[0], m.queue[1]
	m.queue = m.queue[2:]
	delete(m.byID, first.playerID)
	delete(m.byID, second.playerID)
	return first, second, true
}

// Waiting reports the pool size.
func (m *Matchmaker) Waiting() int { return len(m.queue) }
