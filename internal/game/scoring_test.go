package game

import (
	"testing"

	"emoji-guess-service/internal/domain"
)

func TestAnswerScore(t *testing.T) {
	cases := []struct {
		name       string
		timeSpent  float64
		timeLimit  int
		difficulty int
		want       int
	}{
		{"time bonus", 10, 30, 1, 25},
		{"overtime clamps bonus to zero", 35, 30, 1, 15},
		{"half point rounds away from zero", 25, 30, 3, 28},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AnswerScore(tc.timeSpent, tc.timeLimit, tc.difficulty); got != tc.want {
				t.Fatalf("AnswerScore(%v, %d, %d) = %d, want %d", tc.timeSpent, tc.timeLimit, tc.difficulty, got, tc.want)
			}
		})
	}
}

func TestSessionScoreCountsCorrectOnly(t *testing.T) {
	answers := []domain.Answer{
		{TimeSpent: 10, Difficulty: 2, Correct: true},  // 10 + 10 + 10 = 30
		{TimeSpent: 15, Difficulty: 2, Correct: true},  // 10 + 7.5 + 10 = 28
		{TimeSpent: 20, Difficulty: 2, Correct: false}, // ignored
	}
	if got := SessionScore(answers, 30); got != 58 {
		t.Fatalf("expected 58, got %d", got)
	}
}

func TestSessionStats(t *testing.T) {
	answers := []domain.Answer{
		{TimeSpent: 10, Correct: true},
		{TimeSpent: 15, Correct: true},
	}
	stats := SessionStats(answers)
	if stats.TotalQuestions != 2 || stats.CorrectAnswers != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %v", stats.Accuracy)
	}
	if stats.AvgTime != 12.5 || stats.TotalTime != 25 {
		t.Fatalf("unexpected times: %+v", stats)
	}
}

func TestSessionStatsEmpty(t *testing.T) {
	stats := SessionStats(nil)
	if stats.TotalQuestions != 0 || stats.Accuracy != 0 || stats.AvgTime != 0 || stats.TotalTime != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
