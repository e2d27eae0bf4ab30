package postgres

import (
	"context"
	"fmt"

	"brain-brawl-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserStore persists per-player lifetime stats in Postgres. It implements
// app.StatRecorder and app.IdentityLookup.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// RecordResult upserts one game outcome. Unknown players get a row on the
// fly with the raw id as username, so anonymous duels still accumulate stats.
func (s *UserStore) RecordResult(ctx context.Context, playerID string, won bool, points int) error {
	wonInc, lostInc := 0, 1
	if won {
		wonInc, lostInc = 1, 0
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, score, games_played, games_won, games_lost)
		VALUES ($1, $1, $2, 1, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			score        = users.score + EXCLUDED.score,
			games_played = users.games_played + 1,
			games_won    = users.games_won + EXCLUDED.games_won,
			games_lost   = users.games_lost + EXCLUDED.games_lost,
			updated_at   = now()`,
		playerID, points, wonInc, lostInc)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// UsernameFor resolves a display name, falling back to the raw id.
func (s *UserStore) UsernameFor(ctx context.Context, playerID string) string {
	var username string
	err := s.pool.QueryRow(ctx, `SELECT username FROM users WHERE id=$1`, playerID).Scan(&username)
	if err != nil || username == "" {
		return playerID
	}
	return username
}

// Profile returns a player's accumulated stats.
func (s *UserStore) Profile(ctx context.Context, playerID string) (domain.Profile, error) {
	p := domain.Profile{PlayerID: playerID}
	err := s.pool.QueryRow(ctx, `
		SELECT username, score, games_played, games_won, games_lost
		FROM users WHERE id=$1`, playerID).
		Scan(&p.Username, &p.Score, &p.GamesPlayed, &p.GamesWon, &p.GamesLost)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	p.WinRate = winRate(p.GamesWon, p.GamesPlayed)
	return p, nil
}

// Top returns the highest-scoring players, best first.
func (s *UserStore) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, score, games_played, games_won
		FROM users ORDER BY score DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	rank := 1
	for rows.Next() {
		var e domain.LeaderboardEntry
		var won, played int
		if err := rows.Scan(&e.PlayerID, &e.Username, &e.Score, &played, &won); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.Rank = rank
		e.GamesPlayed = played
		e.WinRate = winRate(won, played)
		entries = append(entries, e)
		rank++
	}
	return entries, rows.Err()
}

func winRate(won, played int) int {
	if played == 0 {
		return 0
	}
	return won * 100 / played
}
