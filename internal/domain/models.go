package domain

import "time"

// SessionStatus tracks where a battle session is in its lifecycle.
type SessionStatus string

const (
	StatusWaiting   SessionStatus = "waiting"
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// Question is a single multiple-choice trivia question.
type Question struct {
	ID               string   `json:"id"`
	Prompt           string   `json:"question"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
}

// PlayerState is one participant's mutable state within a session.
// CurrentAnswer stays nil until the player answers; the empty string is the
// blank marker written when the round timer expires first.
type PlayerState struct {
	PlayerID        string
	Score           int
	Health          int
	CurrentAnswer   *string
	AnsweredAt      *time.Time
	TimeRemainingMs int
	WantsRematch    bool
	Character       string
}

// PlayerSnapshot is the wire-friendly view of a PlayerState.
type PlayerSnapshot struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Health    int    `json:"health"`
	Answered  bool   `json:"answered"`
	Character string `json:"character"`
}

// SessionSnapshot is a point-in-time copy of a session, safe to hand to clients.
type SessionSnapshot struct {
	SessionID   string           `json:"sessionId"`
	Players     []PlayerSnapshot `json:"players"`
	Round       int              `json:"round"`
	TotalRounds int              `json:"totalRounds"`
	Status      SessionStatus    `json:"status"`
	StartedAt   *time.Time       `json:"startedAt,omitempty"`
	EndedAt     *time.Time       `json:"endedAt,omitempty"`
}

// AnswerResult is the unicast reply to a submit_answer call. Err carries the
// player-facing failure alongside the normal shape, never instead of it.
type AnswerResult struct {
	IsCorrect    bool   `json:"isCorrect"`
	PointsEarned int    `json:"pointsEarned"`
	Err          string `json:"error,omitempty"`
}

// PlayerRoundResult is one player's line in a round's results.
type PlayerRoundResult struct {
	PlayerID        string  `json:"playerId"`
	Answer          *string `json:"answer"`
	IsCorrect       bool    `json:"isCorrect"`
	TimeRemainingMs int     `json:"timeRemaining"`
	PointsEarned    int     `json:"pointsEarned"`
	DamageDealt     int     `json:"damageDealt"`
}

// RoundResult is derived from the session and the just-closed question; it is
// recomputable and never stored authoritatively.
type RoundResult struct {
	Question      Question            `json:"question"`
	Round         int                 `json:"round"`
	PlayerResults []PlayerRoundResult `json:"playerResults"`
}

// FinalStanding is one player's line in the game_over payload.
type FinalStanding struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Health    int    `json:"health"`
	Character string `json:"character"`
}

// FinalResults names the winner, or no one when both players fell in the same
// settle step.
type FinalResults struct {
	Players []FinalStanding `json:"players"`
	Winner  string          `json:"winner,omitempty"`
	Tie     bool            `json:"tie"`
}

// OpponentInfo rides on the match_found event.
type OpponentInfo struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	Character string `json:"character"`
}

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry struct {
	PlayerID    string `json:"playerId"`
	Username    string `json:"username"`
	Rank        int    `json:"rank"`
	Score       int    `json:"score"`
	GamesPlayed int    `json:"gamesPlayed"`
	WinRate     int    `json:"winRate"`
}

// Profile is the stat view of a single player.
type Profile struct {
	PlayerID    string `json:"playerId"`
	Username    string `json:"username"`
	Score       int    `json:"score"`
	GamesPlayed int    `json:"gamesPlayed"`
	GamesWon    int    `json:"gamesWon"`
	GamesLost   int    `json:"gamesLost"`
	WinRate     int    `json:"winRate"`
}
