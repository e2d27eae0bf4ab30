package app

import "time"

// Tuning holds the gameplay constants. Values are configuration, not game
// logic; defaults match the original balance of the duel (1000 health,
// 100 base points, 10 bonus points per second remaining, 20s windows).
type Tuning struct {
	InitialHealth  int
	BasePoints     int
	PerSecondBonus int
	TotalRounds    int
	QuestionWindow time.Duration
	RevealDelay    time.Duration
	StartCountdown time.Duration
	CleanupGrace   time.Duration
}

func DefaultTuning() Tuning {
	return Tuning{
		InitialHealth:  1000,
		BasePoints:     100,
		PerSecondBonus: 10,
		TotalRounds:    999999, // display only; health ends the game
		QuestionWindow: 20 * time.Second,
		RevealDelay:    5 * time.Second,
		StartCountdown: 3 * time.Second,
		CleanupGrace:   60 * time.Second,
	}
}
