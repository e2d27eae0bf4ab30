package app

import (
	"context"
	"log"

	"brain-brawl-service/internal/domain"
)

// SessionRepository abstracts how battle sessions are stored (in-memory,
// Redis-marked, etc). Put indexes every player of the session; Remove must
// drop those reverse entries again, but only while they still point at the
// removed session, so a rematch that re-homed the players is not clobbered.
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Remove(sessionID string)
	SessionOf(playerID string) (string, bool)
}

// QuestionRepository supplies the question list for a new session
// (from cache/backing provider).
type QuestionRepository interface {
	FetchQuestions(ctx context.Context) ([]domain.Question, error)
}

// StatRecorder receives one result per player when a session completes.
// Failures are logged by the caller and never affect the game outcome.
type StatRecorder interface {
	RecordResult(ctx context.Context, playerID string, won bool, points int) error
}

// IdentityLookup resolves a display name for a player id, best effort.
type IdentityLookup interface {
	UsernameFor(ctx context.Context, playerID string) string
}

// NoopStats is the fallback StatRecorder when no store is configured.
type NoopStats struct{}

func (NoopStats) RecordResult(context.Context, string, bool, int) error { return nil }

// NoopIdentity falls back to the raw player id.
type NoopIdentity struct{}

func (NoopIdentity) UsernameFor(_ context.Context, playerID string) string { return playerID }

// MultiStats fans a result out to several recorders; each failure is logged
// independently so one broken collaborator does not starve the others.
type MultiStats []StatRecorder

func (m MultiStats) RecordResult(ctx context.Context, playerID string, won bool, points int) error {
	for _, r := range m {
		if err := r.RecordResult(ctx, playerID, won, points); err != nil {
			log.Printf("record result for %s: %v", playerID, err)
		}
	}
	return nil
}
