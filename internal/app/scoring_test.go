package app

import (
	"testing"

	"brain-brawl-service/internal/domain"
)

func TestPointsFormula(t *testing.T) {
	tuning := DefaultTuning()
	tuning.BasePoints = 100
	tuning.PerSecondBonus = 5

	cases := []struct {
		name        string
		correct     bool
		remainingMs int
		want        int
	}{
		{"correct with 5s left", true, 5000, 125},
		{"correct with 2s left", true, 2000, 110},
		{"correct with no time left", true, 0, 100},
		{"correct with partial second", true, 1500, 107},
		{"incorrect earns nothing", false, 9000, 0},
		{"negative remaining clamps to zero", true, -100, 100},
	}
	for _, tc := range cases {
		if got := points(tuning, tc.correct, tc.remainingMs); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestPointsMonotonicInTimeRemaining(t *testing.T) {
	tuning := DefaultTuning()
	prev := -1
	for ms := 0; ms <= 20000; ms += 250 {
		got := points(tuning, true, ms)
		if got < prev {
			t.Fatalf("points decreased: %d ms -> %d, previous %d", ms, got, prev)
		}
		prev = got
	}
}

func TestApplyDamageIsSimultaneousAndFloored(t *testing.T) {
	a := &domain.PlayerState{PlayerID: "a", Health: 120}
	b := &domain.PlayerState{PlayerID: "b", Health: 100}

	applyDamage(a, b, 150, 90)

	if b.Health != 0 {
		t.Fatalf("expected b floored at 0, got %d", b.Health)
	}
	if a.Health != 30 {
		t.Fatalf("expected a at 30, got %d", a.Health)
	}
}

func TestRoundResultBlankAnswer(t *testing.T) {
	tuning := DefaultTuning()
	blank := ""
	p := &domain.PlayerState{PlayerID: "p", Health: 1000, CurrentAnswer: &blank}
	q := domain.Question{ID: "1", Prompt: "?", CorrectAnswer: "yes"}

	r := playerRoundResult(tuning, p, q)
	if r.IsCorrect || r.PointsEarned != 0 || r.DamageDealt != 0 {
		t.Fatalf("blank answer must earn nothing, got %+v", r)
	}
}
