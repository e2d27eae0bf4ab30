package app

import (
	"time"

	"brain-brawl-service/internal/domain"
)

type sessionPhase int

const (
	phaseLobby        sessionPhase = iota // players assigned, not all joined
	phaseCountdown                        // all joined, start timer armed
	phaseQuestionOpen                     // question broadcast, window timer armed
	phaseSettling                         // results broadcast, reveal timer armed
	phaseDone                             // completed, cleanup timer armed
)

// Session is the aggregate root of one duel. All fields are guarded by the
// BattleService mutex; the session itself carries no lock. The epoch counter
// increments on every phase transition, and every armed timer closure captures
// the epoch it was armed under, so a callback that wakes after the world moved
// on observes the mismatch and no-ops.
type Session struct {
	id        string
	players   []*domain.PlayerState
	usernames map[string]string
	joined    map[string]bool

	questions []domain.Question
	current   *domain.Question
	round     int

	status    domain.SessionStatus
	phase     sessionPhase
	epoch     int
	timer     *time.Timer
	createdAt time.Time
	startedAt *time.Time
	endedAt   *time.Time

	subscribers map[string]chan domain.Event
}

func newSession(id string, players []*domain.PlayerState, usernames map[string]string, questions []domain.Question, createdAt time.Time) *Session {
	return &Session{
		id:          id,
		players:     players,
		usernames:   usernames,
		joined:      make(map[string]bool),
		questions:   questions,
		status:      domain.StatusWaiting,
		phase:       phaseLobby,
		createdAt:   createdAt,
		subscribers: make(map[string]chan domain.Event),
	}
}

// NewSession is exported for infrastructure layers and their tests that need
// to seed stores directly.
func NewSession(id string, playerIDs []string) *Session {
	players := make([]*domain.PlayerState, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		players = append(players, &domain.PlayerState{PlayerID: playerID})
	}
	return newSession(id, players, map[string]string{}, nil, time.Now())
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// PlayerIDs returns the participants in join order. Stores use this to
// maintain the player-to-session reverse index.
func (s *Session) PlayerIDs() []string {
	ids := make([]string, 0, len(s.players))
	for _, p := range s.players {
		ids = append(ids, p.PlayerID)
	}
	return ids
}

func (s *Session) player(playerID string) *domain.PlayerState {
	for _, p := range s.players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) opponentOf(playerID string) *domain.PlayerState {
	for _, p := range s.players {
		if p.PlayerID != playerID {
			return p
		}
	}
	return nil
}

func (s *Session) allJoined() bool {
	for _, p := range s.players {
		if !s.joined[p.PlayerID] {
			return false
		}
	}
	return true
}

func (s *Session) allAnswered() bool {
	for _, p := range s.players {
		if p.CurrentAnswer == nil {
			return false
		}
	}
	return true
}

func (s *Session) allWantRematch() bool {
	for _, p := range s.players {
		if !p.WantsRematch {
			return false
		}
	}
	return true
}

func (s *Session) resetAnswers() {
	for _, p := range s.players {
		p.CurrentAnswer = nil
		p.AnsweredAt = nil
		p.TimeRemainingMs = 0
	}
}

// markBlanks records the empty answer for everyone who ran out the clock.
// Blank counts as incorrect with zero time remaining.
func (s *Session) markBlanks(now time.Time) {
	for _, p := range s.players {
		if p.CurrentAnswer == nil {
			blank := ""
			p.CurrentAnswer = &blank
			p.AnsweredAt = &now
			p.TimeRemainingMs = 0
		}
	}
}

func (s *Session) anyDefeated() bool {
	for _, p := range s.players {
		if p.Health <= 0 {
			return true
		}
	}
	return false
}

// stopTimer disarms the outstanding timer, if any. A stopped timer may already
// have fired and be parked on the service lock; the epoch check in its
// callback is what actually neutralizes it.
func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// advance moves the session to the next phase and invalidates every timer
// armed under the previous epoch.
func (s *Session) advance(phase sessionPhase) {
	s.stopTimer()
	s.phase = phase
	s.epoch++
}

func (s *Session) subscribe(playerID string, ch chan domain.Event) {
	s.subscribers[playerID] = ch
}

func (s *Session) unsubscribe(playerID string) {
	delete(s.subscribers, playerID)
}

// sendTo delivers an event to one subscribed participant.
func (s *Session) sendTo(playerID string, ev domain.Event) {
	if ch, ok := s.subscribers[playerID]; ok {
		sendEvent(ch, ev)
	}
}

// broadcast sends an event to every subscribed participant. A full outbox has
// its oldest event dropped so a stalled reader cannot block the round loop.
func (s *Session) broadcast(ev domain.Event) {
	for _, ch := range s.subscribers {
		sendEvent(ch, ev)
	}
}

func sendEvent(ch chan domain.Event, ev domain.Event) {
	select {
	case ch <- ev:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Session) snapshot(totalRounds int) domain.SessionSnapshot {
	players := make([]domain.PlayerSnapshot, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, domain.PlayerSnapshot{
			PlayerID:  p.PlayerID,
			Username:  s.usernames[p.PlayerID],
			Score:     p.Score,
			Health:    p.Health,
			Answered:  p.CurrentAnswer != nil,
			Character: p.Character,
		})
	}
	return domain.SessionSnapshot{
		SessionID:   s.id,
		Players:     players,
		Round:       s.round,
		TotalRounds: totalRounds,
		Status:      s.status,
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
	}
}

func (s *Session) roundResults(t Tuning) domain.RoundResult {
	results := make([]domain.PlayerRoundResult, 0, len(s.players))
	for _, p := range s.players {
		results = append(results, playerRoundResult(t, p, *s.current))
	}
	return domain.RoundResult{
		Question:      *s.current,
		Round:         s.round,
		PlayerResults: results,
	}
}
