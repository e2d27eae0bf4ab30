package app

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"brain-brawl-service/internal/domain"
	"github.com/google/uuid"
)

// BattleService owns matchmaking and the full session lifecycle: pairing,
// question timing, answer intake, damage, completion and rematches.
//
// One mutex guards the wait pool, the session store and every session
// mutation. Handlers and timer callbacks all run their read-modify-write
// under it, so round advancement is serialized; the epoch check described on
// Session resolves the all-answered vs timeout race deterministically.
type BattleService struct {
	mu         sync.Mutex
	store      SessionRepository
	questions  QuestionRepository
	stats      StatRecorder
	identity   IdentityLookup
	matchmaker *Matchmaker
	tuning     Tuning
	now        func() time.Time
}

func NewBattleService(store SessionRepository, questions QuestionRepository, stats StatRecorder, identity IdentityLookup, tuning Tuning) *BattleService {
	if stats == nil {
		stats = NoopStats{}
	}
	if identity == nil {
		identity = NoopIdentity{}
	}
	return &BattleService{
		store:      store,
		questions:  questions,
		stats:      stats,
		identity:   identity,
		matchmaker: NewMatchmaker(),
		tuning:     tuning,
		now:        time.Now,
	}
}

// JoinWaitingRoom enqueues a player for matchmaking. When a second player is
// available the two earliest waiters are paired into a new session and each
// receives match_found on their outbox. With no opponent around the player
// simply stays queued; matching is eventual, not guaranteed.
func (s *BattleService) JoinWaitingRoom(ctx context.Context, playerID, character string, outbox chan domain.Event) error {
	// Question fetch and username lookup happen before taking the lock; no
	// blocking I/O runs inside a session transition.
	questions := s.loadQuestions(ctx)
	username := s.identity.UsernameFor(ctx, playerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.matchmaker.Enqueue(playerID, username, character, outbox)
	first, second, ok := s.matchmaker.TakePair()
	if !ok {
		return nil
	}

	sess := newSession(
		uuid.NewString(),
		[]*domain.PlayerState{
			{PlayerID: first.playerID, Health: s.tuning.InitialHealth, Character: first.character},
			{PlayerID: second.playerID, Health: s.tuning.InitialHealth, Character: second.character},
		},
		map[string]string{first.playerID: first.username, second.playerID: second.username},
		questions,
		s.now(),
	)
	s.store.Put(sess)
	log.Printf("matched %s vs %s into session %s", first.playerID, second.playerID, sess.id)

	notifyMatch(first, second, sess.id)
	notifyMatch(second, first, sess.id)
	return nil
}

func notifyMatch(to, opponent *waiter, sessionID string) {
	sendEvent(to.outbox, domain.Event{Type: domain.EventMatchFound, Payload: domain.MatchFoundPayload{
		SessionID: sessionID,
		Opponent: domain.OpponentInfo{
			PlayerID:  opponent.playerID,
			Username:  opponent.username,
			Character: opponent.character,
		},
		Message: "Match found! Joining game...",
	}})
}

// LeaveWaitingRoom removes a player from the matchmaking pool.
func (s *BattleService) LeaveWaitingRoom(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matchmaker.Remove(playerID)
}

// JoinSession attaches a player's outbox to their session and returns the
// current snapshot. Once both players have joined, the starting countdown is
// announced and armed; when it fires the first question goes out.
// Joining again replaces the player's previous outbox. A dropped connection is
// handled by Disconnect, which forfeits and purges the session, so there is no
// re-join path after a disconnect.
func (s *BattleService) JoinSession(ctx context.Context, sessionID, playerID, character string, outbox chan domain.Event) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.store.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	player := sess.player(playerID)
	if player == nil {
		return domain.SessionSnapshot{}, domain.ErrPlayerNotInSession
	}
	if character != "" {
		player.Character = character
	}
	sess.subscribe(playerID, outbox)
	sess.joined[playerID] = true

	if sess.phase == phaseLobby && sess.allJoined() {
		sess.advance(phaseCountdown)
		sess.broadcast(domain.Event{Type: domain.EventSessionStarting, Payload: domain.SessionStartingPayload{
			CountdownMs: s.tuning.StartCountdown.Milliseconds(),
			Message:     "All players have joined. Game starting soon!",
		}})
		s.armTimer(sess, s.tuning.StartCountdown, s.onStartCountdown)
	}
	return sess.snapshot(s.tuning.TotalRounds), nil
}

// SubmitAnswer records a player's answer for the open round. The first answer
// wins: a second submission is rejected and the original score stands. The
// call never advances the round by itself; it only short-circuits the window
// timer when it observes that everyone has now answered.
func (s *BattleService) SubmitAnswer(ctx context.Context, sessionID, playerID, answer string, timeRemainingMs int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.store.Get(sessionID)
	if !ok {
		return domain.AnswerResult{Err: domain.ErrSessionNotFound.Error()}, domain.ErrSessionNotFound
	}
	player := sess.player(playerID)
	if player == nil {
		return domain.AnswerResult{Err: domain.ErrPlayerNotInSession.Error()}, domain.ErrPlayerNotInSession
	}
	if sess.status != domain.StatusActive || sess.phase != phaseQuestionOpen {
		return domain.AnswerResult{Err: domain.ErrRoundNotOpen.Error()}, domain.ErrRoundNotOpen
	}
	if player.CurrentAnswer != nil {
		return domain.AnswerResult{Err: domain.ErrAlreadyAnswered.Error()}, domain.ErrAlreadyAnswered
	}

	if timeRemainingMs < 0 {
		timeRemainingMs = 0
	}
	now := s.now()
	player.CurrentAnswer = &answer
	player.AnsweredAt = &now
	player.TimeRemainingMs = timeRemainingMs

	correct := answer == sess.current.CorrectAnswer
	earned := points(s.tuning, correct, timeRemainingMs)
	player.Score += earned

	// The reply is delivered here, under the lock, so the submitter always
	// sees it before any round_results their own submission triggers.
	result := domain.AnswerResult{IsCorrect: correct, PointsEarned: earned}
	sess.sendTo(playerID, domain.Event{Type: domain.EventAnswerResult, Payload: result})

	if sess.allAnswered() {
		s.settleRound(sess, false)
	}
	return result, nil
}

// RequestRematch registers a player's rematch vote. Once every player has
// opted in, a brand-new session is created for the same pair, characters
// carried over and everything else reset, and the old session is purged.
func (s *BattleService) RequestRematch(ctx context.Context, sessionID, playerID string) error {
	questions := s.loadQuestions(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.store.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	player := sess.player(playerID)
	if player == nil {
		return domain.ErrPlayerNotInSession
	}
	player.WantsRematch = true

	if !(sess.status == domain.StatusCompleted && sess.allWantRematch()) {
		sess.broadcast(domain.Event{Type: domain.EventRematchRequested, Payload: domain.RematchRequestedPayload{
			PlayerID:     playerID,
			StillPending: sess.pendingRematchVotes(),
		}})
		return nil
	}

	players := make([]*domain.PlayerState, 0, len(sess.players))
	for _, p := range sess.players {
		players = append(players, &domain.PlayerState{
			PlayerID:  p.PlayerID,
			Health:    s.tuning.InitialHealth,
			Character: p.Character, // the only state that survives a rematch
		})
	}
	next := newSession(uuid.NewString(), players, sess.usernames, questions, s.now())
	s.store.Put(next)
	log.Printf("rematch of session %s created as %s", sess.id, next.id)

	sess.broadcast(domain.Event{Type: domain.EventRematchCreated, Payload: domain.RematchCreatedPayload{
		NewSessionID: next.id,
		Message:      "All players accepted rematch. New game created!",
	}})
	sess.stopTimer()
	s.store.Remove(sess.id)
	return nil
}

func (s *Session) pendingRematchVotes() []string {
	pending := []string{}
	for _, p := range s.players {
		if !p.WantsRematch {
			pending = append(pending, p.PlayerID)
		}
	}
	return pending
}

// Disconnect handles a dropped connection. A waiting player leaves the pool;
// a player in a live session forces immediate completion with the opponent as
// winner; a completed session is purged on the spot.
func (s *BattleService) Disconnect(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.matchmaker.Remove(playerID)

	sessionID, ok := s.store.SessionOf(playerID)
	if !ok {
		return
	}
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return
	}
	sess.unsubscribe(playerID)
	sess.broadcast(domain.Event{Type: domain.EventPlayerDisconnected, Payload: domain.PlayerDisconnectedPayload{
		PlayerID: playerID,
	}})

	switch sess.status {
	case domain.StatusActive:
		winner := sess.opponentOf(playerID)
		s.completeSession(sess, winner.PlayerID)
		sess.stopTimer()
		s.store.Remove(sess.id)
	default:
		// Never started or already finished; nothing left to settle.
		sess.stopTimer()
		s.store.Remove(sess.id)
	}
	log.Printf("player %s disconnected, session %s purged", playerID, sessionID)
}

// Snapshot returns the current view of a session.
func (s *BattleService) Snapshot(sessionID string) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return sess.snapshot(s.tuning.TotalRounds), nil
}

// loadQuestions pulls the question list from the repository and substitutes
// the builtin set on failure or an empty result. Players never see a
// question-source outage.
func (s *BattleService) loadQuestions(ctx context.Context) []domain.Question {
	questions, err := s.questions.FetchQuestions(ctx)
	if err != nil {
		log.Printf("question source unavailable, using builtin set: %v", err)
		return domain.BuiltinQuestions()
	}
	if len(questions) == 0 {
		log.Printf("question source returned nothing, using builtin set")
		return domain.BuiltinQuestions()
	}
	return questions
}

// armTimer schedules a phase callback for this session. The closure captures
// the session id and the epoch at arm time; the callback re-validates both
// before touching anything.
func (s *BattleService) armTimer(sess *Session, d time.Duration, fn func(sessionID string, epoch int)) {
	id, epoch := sess.id, sess.epoch
	sess.timer = time.AfterFunc(d, func() { fn(id, epoch) })
}

// validate re-fetches the session and checks the timer's epoch is still
// current. Callers hold the lock. A stale epoch means the other trigger won
// the race (or the session moved on entirely) and the timer must no-op.
func (s *BattleService) validate(sessionID string, epoch int) (*Session, bool) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, false
	}
	if sess.epoch != epoch {
		return nil, false
	}
	return sess, true
}

// onStartCountdown fires when the pre-game countdown elapses and opens the
// first round.
func (s *BattleService) onStartCountdown(sessionID string, epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.validate(sessionID, epoch)
	if !ok || sess.phase != phaseCountdown {
		return
	}

	now := s.now()
	sess.status = domain.StatusActive
	sess.startedAt = &now
	sess.round = 1
	sess.current = &sess.questions[0]
	sess.broadcast(domain.Event{Type: domain.EventSessionStarted, Payload: sess.snapshot(s.tuning.TotalRounds)})
	s.openRound(sess)
	log.Printf("session %s started with %d questions", sess.id, len(sess.questions))
}

// openRound broadcasts the current question and then arms the window timer.
// The broadcast strictly precedes arming, so every participant has seen the
// question before any answer for it can race the timeout.
func (s *BattleService) openRound(sess *Session) {
	sess.resetAnswers()
	sess.advance(phaseQuestionOpen)
	sess.broadcast(domain.Event{Type: domain.EventNewQuestion, Payload: domain.NewQuestionPayload{
		Question:    *sess.current,
		Round:       sess.round,
		TotalRounds: s.tuning.TotalRounds,
	}})
	s.armTimer(sess, s.tuning.QuestionWindow, s.onQuestionTimeout)
}

// onQuestionTimeout fires when the answer window closes with at least one
// player unanswered. If the all-answered path already settled the round, the
// epoch check above makes this a no-op.
func (s *BattleService) onQuestionTimeout(sessionID string, epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.validate(sessionID, epoch)
	if !ok || sess.phase != phaseQuestionOpen {
		return
	}
	s.settleRound(sess, true)
}

// settleRound closes the current question: blanks are recorded on the timeout
// path, results are computed once, damage lands on both players in the same
// step, and the reveal pause is armed. Exactly one of the two triggers
// (all-answered, timeout) ever reaches here for a given round.
func (s *BattleService) settleRound(sess *Session, timedOut bool) {
	if timedOut {
		sess.markBlanks(s.now())
		sess.broadcast(domain.Event{Type: domain.EventTimeUp, Payload: domain.ErrorPayload{Message: "Time's up!"}})
	}

	results := sess.roundResults(s.tuning)
	applyDamage(sess.players[0], sess.players[1],
		results.PlayerResults[0].DamageDealt, results.PlayerResults[1].DamageDealt)

	sess.advance(phaseSettling)
	sess.broadcast(domain.Event{Type: domain.EventRoundResults, Payload: results})
	s.armTimer(sess, s.tuning.RevealDelay, s.onRevealDone)
}

// onRevealDone fires after the reveal pause: either the duel is decided or
// the next round opens, cycling through the question list by index.
func (s *BattleService) onRevealDone(sessionID string, epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.validate(sessionID, epoch)
	if !ok || sess.phase != phaseSettling {
		return
	}

	if sess.anyDefeated() {
		s.completeSession(sess, "")
		sess.advance(phaseDone)
		s.armTimer(sess, s.tuning.CleanupGrace, s.onCleanupExpired)
		return
	}

	sess.round++
	sess.current = &sess.questions[(sess.round-1)%len(sess.questions)]
	s.openRound(sess)
}

// completeSession finalizes the duel. forcedWinner is set on the disconnect
// path; otherwise the player with health remaining wins, and both falling in
// the same settle step is a tie with no winner.
func (s *BattleService) completeSession(sess *Session, forcedWinner string) {
	now := s.now()
	sess.status = domain.StatusCompleted
	sess.endedAt = &now

	results := s.finalResults(sess, forcedWinner)
	sess.broadcast(domain.Event{Type: domain.EventGameOver, Payload: results})
	log.Printf("session %s completed, winner=%q tie=%v", sess.id, results.Winner, results.Tie)

	// Stat updates are fire-and-forget: the outcome has already been
	// broadcast and must not be rolled back or delayed by a collaborator.
	for _, p := range sess.players {
		playerID, score := p.PlayerID, p.Score
		won := playerID == results.Winner
		go func() {
			if err := s.stats.RecordResult(context.Background(), playerID, won, score); err != nil {
				log.Printf("record result for %s: %v", playerID, err)
			}
		}()
	}
}

func (s *BattleService) finalResults(sess *Session, forcedWinner string) domain.FinalResults {
	standings := make([]domain.FinalStanding, 0, len(sess.players))
	for _, p := range sess.players {
		standings = append(standings, domain.FinalStanding{
			PlayerID:  p.PlayerID,
			Username:  sess.usernames[p.PlayerID],
			Score:     p.Score,
			Health:    p.Health,
			Character: p.Character,
		})
	}
	// Highest score first for display.
	sort.Slice(standings, func(i, j int) bool { return standings[i].Score > standings[j].Score })

	winner := forcedWinner
	tie := false
	if winner == "" {
		alive := []*domain.PlayerState{}
		for _, p := range sess.players {
			if p.Health > 0 {
				alive = append(alive, p)
			}
		}
		switch len(alive) {
		case 1:
			winner = alive[0].PlayerID
		case 0:
			tie = true // both fell in the same settle step
		}
	}
	return domain.FinalResults{Players: standings, Winner: winner, Tie: tie}
}

// onCleanupExpired purges a completed session whose rematch window lapsed,
// bounding memory growth. A rematch that already replaced the session leaves
// a stale epoch behind and this no-ops.
func (s *BattleService) onCleanupExpired(sessionID string, epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.validate(sessionID, epoch)
	if !ok || sess.status != domain.StatusCompleted {
		return
	}
	s.store.Remove(sess.id)
	log.Printf("session %s purged after rematch grace period", sessionID)
}
