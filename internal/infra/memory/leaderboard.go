package memory

import (
	"context"
	"sort"
	"sync"

	"emoji-guess-service/internal/domain"
)

// Leaderboard is an in-memory implementation of app.LeaderboardStore. One
// entry is kept per user, the best score winning.
type Leaderboard struct {
	mu      sync.Mutex
	entries map[string]domain.LeaderboardEntry
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{entries: make(map[string]domain.LeaderboardEntry)}
}

func (l *Leaderboard) Add(_ context.Context, entry domain.LeaderboardEntry) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.entries[entry.UserID]; !ok || entry.Score > existing.Score {
		l.entries[entry.UserID] = entry
	}
	return l.rankLocked(entry.UserID), nil
}

func (l *Leaderboard) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sorted := l.sortedLocked()
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (l *Leaderboard) rankLocked(userID string) int {
	for i, entry := range l.sortedLocked() {
		if entry.UserID == userID {
			return i + 1
		}
	}
	return 0
}

func (l *Leaderboard) sortedLocked() []domain.LeaderboardEntry {
	sorted := make([]domain.LeaderboardEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		sorted = append(sorted, entry)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		// Tie-break by who got there first, then by name for stability.
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].Username < sorted[j].Username
	})
	return sorted
}
