package redis

import (
	"context"
	"fmt"

	"brain-brawl-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "battle:leaderboard"

// Leaderboard keeps a global score ranking in a Redis sorted set. It doubles
// as an app.StatRecorder: every completed duel increments the players'
// lifetime scores with ZINCRBY.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) RecordResult(ctx context.Context, playerID string, won bool, points int) error {
	if err := l.client.ZIncrBy(ctx, leaderboardKey, float64(points), playerID).Err(); err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}
	return nil
}

// Top returns the highest-scoring players, best first.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	res, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(res))
	for i, z := range res {
		playerID, _ := z.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{
			PlayerID: playerID,
			Username: playerID,
			Rank:     i + 1,
			Score:    int(z.Score),
		})
	}
	return entries, nil
}
