package game

import (
	"strings"

	"emoji-guess-service/internal/domain"
)

// Evaluation is the outcome of matching a submitted answer against a question.
type Evaluation struct {
	Correct        bool
	AcceptedSource domain.Source // first source (in caller order) whose list matched
	CorrectAnswers []string
}

// Evaluate matches a raw answer against the question's answer lists for the
// given sources. Matching is whitespace- and case-insensitive. Sources are
// tried in the caller's order and the first match wins; on a miss the result
// carries the deduplicated union of every source's answers, in insertion
// order, for feedback.
func Evaluate(rawAnswer string, question domain.Question, sources []domain.Source) Evaluation {
	normalized := normalizeAnswer(rawAnswer)

	for _, source := range sources {
		answers := question.Answers[source]
		for _, accepted := range answers {
			if normalizeAnswer(accepted) == normalized {
				return Evaluation{
					Correct:        true,
					AcceptedSource: source,
					CorrectAnswers: answers,
				}
			}
		}
	}

	seen := make(map[string]struct{})
	var union []string
	for _, source := range sources {
		for _, accepted := range question.Answers[source] {
			if _, ok := seen[accepted]; ok {
				continue
			}
			seen[accepted] = struct{}{}
			union = append(union, accepted)
		}
	}

	return Evaluation{Correct: false, CorrectAnswers: union}
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
