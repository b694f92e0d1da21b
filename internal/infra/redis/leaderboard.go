package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"emoji-guess-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey        = "leaderboard"
	leaderboardEntriesKey = "leaderboard:entries"
)

// Leaderboard ranks finished sessions in a sorted set, one best score per
// user, with the full entry JSON kept in a companion hash.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) Add(ctx context.Context, entry domain.LeaderboardEntry) (int, error) {
	current, err := l.client.ZScore(ctx, leaderboardKey, entry.UserID).Result()
	if err == nil && int(current) >= entry.Score {
		return l.rank(ctx, entry.UserID)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("marshal leaderboard entry: %w", err)
	}

	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(entry.Score), Member: entry.UserID})
	pipe.HSet(ctx, leaderboardEntriesKey, entry.UserID, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record leaderboard entry: %w", err)
	}

	return l.rank(ctx, entry.UserID)
}

func (l *Leaderboard) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	userIDs, err := l.client.ZRevRange(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	raw, err := l.client.HMGet(ctx, leaderboardEntriesKey, userIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard entries: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(raw))
	for _, value := range raw {
		text, ok := value.(string)
		if !ok {
			continue
		}
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(text), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (l *Leaderboard) rank(ctx context.Context, userID string) (int, error) {
	rank, err := l.client.ZRevRank(ctx, leaderboardKey, userID).Result()
	if err != nil {
		return 0, fmt.Errorf("leaderboard rank: %w", err)
	}
	return int(rank) + 1, nil
}
