package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minTimeLimit     = 15
	maxTimeLimit     = 60
	minQuestionCount = 5
	maxQuestionCount = 50

	minAnswerLength = 1
	maxAnswerLength = 50
)

var answerPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateSettings checks game settings before a session is created. Returns
// a *ValidationError listing every violated field, or nil.
func ValidateSettings(settings GameSettings) error {
	var errs []string

	if len(settings.Sources) == 0 {
		errs = append(errs, "at least one source must be selected")
	} else {
		var invalid []string
		for _, source := range settings.Sources {
			if !knownSource(source) {
				invalid = append(invalid, string(source))
			}
		}
		if len(invalid) > 0 {
			errs = append(errs, fmt.Sprintf("invalid sources: %s", strings.Join(invalid, ", ")))
		}
	}

	switch settings.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyAll:
	default:
		errs = append(errs, "invalid difficulty level")
	}

	if settings.TimeLimit < minTimeLimit || settings.TimeLimit > maxTimeLimit {
		errs = append(errs, fmt.Sprintf("time limit must be between %d and %d seconds", minTimeLimit, maxTimeLimit))
	}

	if settings.QuestionCount < minQuestionCount || settings.QuestionCount > maxQuestionCount {
		errs = append(errs, fmt.Sprintf("question count must be between %d and %d", minQuestionCount, maxQuestionCount))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidateAnswer checks a submitted shortcode's shape.
func ValidateAnswer(answer string) error {
	var errs []string
	if len(answer) < minAnswerLength {
		errs = append(errs, "answer is required")
	} else {
		if len(answer) > maxAnswerLength {
			errs = append(errs, fmt.Sprintf("answer must be at most %d characters", maxAnswerLength))
		}
		if !answerPattern.MatchString(answer) {
			errs = append(errs, "answer can only contain letters, numbers, and underscores")
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func knownSource(source Source) bool {
	for _, known := range KnownSources {
		if source == known {
			return true
		}
	}
	return false
}
