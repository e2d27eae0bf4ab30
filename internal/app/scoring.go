package app

import "brain-brawl-service/internal/domain"

// points converts correctness and remaining time into points earned.
// The bonus scales continuously with remaining milliseconds, no cliff:
// base + floor(timeRemainingMs/1000 * perSecondBonus).
func points(t Tuning, correct bool, timeRemainingMs int) int {
	if !correct {
		return 0
	}
	if timeRemainingMs < 0 {
		timeRemainingMs = 0
	}
	return t.BasePoints + timeRemainingMs*t.PerSecondBonus/1000
}

// playerRoundResult recomputes one player's line for the current question.
// Derived from recorded state only, so it is stable however often it runs.
func playerRoundResult(t Tuning, p *domain.PlayerState, q domain.Question) domain.PlayerRoundResult {
	correct := p.CurrentAnswer != nil && *p.CurrentAnswer == q.CorrectAnswer
	earned := points(t, correct, p.TimeRemainingMs)
	return domain.PlayerRoundResult{
		PlayerID:        p.PlayerID,
		Answer:          p.CurrentAnswer,
		IsCorrect:       correct,
		TimeRemainingMs: p.TimeRemainingMs,
		PointsEarned:    earned,
		DamageDealt:     earned, // damage dealt equals points earned
	}
}

// applyDamage applies both players' damage in the same step, never staggered,
// and floors health at zero.
func applyDamage(a, b *domain.PlayerState, damageByA, damageByB int) {
	b.Health -= damageByA
	a.Health -= damageByB
	if a.Health < 0 {
		a.Health = 0
	}
	if b.Health < 0 {
		b.Health = 0
	}
}
