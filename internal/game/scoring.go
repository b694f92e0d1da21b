package game

import (
	"math"

	"emoji-guess-service/internal/domain"
)

const (
	baseScore                 = 10
	timeBonusMultiplier       = 0.5
	difficultyBonusMultiplier = 5
)

// AnswerScore computes the points for a single correct answer: a flat base,
// a bonus for time left on the clock (never negative), and a difficulty
// bonus. Halves round away from zero.
func AnswerScore(timeSpent float64, timeLimit, difficulty int) int {
	timeLeft := float64(timeLimit) - timeSpent
	if timeLeft < 0 {
		timeLeft = 0
	}
	score := baseScore + timeLeft*timeBonusMultiplier + float64(difficulty)*difficultyBonusMultiplier
	return int(math.Round(score))
}

// SessionScore totals the answer scores of the correct answers only, using
// each answer's own recorded time and difficulty.
func SessionScore(answers []domain.Answer, timeLimit int) int {
	total := 0
	for _, answer := range answers {
		if answer.Correct {
			total += AnswerScore(answer.TimeSpent, timeLimit, answer.Difficulty)
		}
	}
	return total
}

// SessionStats aggregates an answer log. Accuracy is a whole percentage;
// times are rounded to two decimals.
func SessionStats(answers []domain.Answer) domain.SessionStats {
	stats := domain.SessionStats{TotalQuestions: len(answers)}
	for _, answer := range answers {
		if answer.Correct {
			stats.CorrectAnswers++
		}
		stats.TotalTime += answer.TimeSpent
	}
	if stats.TotalQuestions > 0 {
		stats.Accuracy = math.Round(float64(stats.CorrectAnswers) / float64(stats.TotalQuestions) * 100)
		stats.AvgTime = roundTwo(stats.TotalTime / float64(stats.TotalQuestions))
	}
	stats.TotalTime = roundTwo(stats.TotalTime)
	return stats
}

func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}
