package domain

import (
	"errors"
	"strings"
	"testing"
)

func validationErrors(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Errors
}

func TestValidateSettingsAccepts(t *testing.T) {
	settings := GameSettings{
		Sources:       []Source{SourceGitHub, SourceSlack},
		Difficulty:    DifficultyMedium,
		TimeLimit:     30,
		QuestionCount: 10,
	}
	if err := ValidateSettings(settings); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}
}

func TestValidateSettingsBounds(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*GameSettings)
		fragment string
	}{
		{"no sources", func(s *GameSettings) { s.Sources = nil }, "at least one source"},
		{"unknown source", func(s *GameSettings) { s.Sources = []Source{"myspace"} }, "invalid sources: myspace"},
		{"bad difficulty", func(s *GameSettings) { s.Difficulty = "impossible" }, "invalid difficulty"},
		{"time limit too low", func(s *GameSettings) { s.TimeLimit = 14 }, "time limit"},
		{"time limit too high", func(s *GameSettings) { s.TimeLimit = 61 }, "time limit"},
		{"question count too low", func(s *GameSettings) { s.QuestionCount = 4 }, "question count"},
		{"question count too high", func(s *GameSettings) { s.QuestionCount = 51 }, "question count"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := GameSettings{
				Sources:       []Source{SourceGitHub},
				Difficulty:    DifficultyAll,
				TimeLimit:     30,
				QuestionCount: 10,
			}
			tc.mutate(&settings)
			errs := validationErrors(t, ValidateSettings(settings))
			if len(errs) != 1 || !strings.Contains(errs[0], tc.fragment) {
				t.Fatalf("expected one error containing %q, got %v", tc.fragment, errs)
			}
		})
	}
}

func TestValidateSettingsCollectsAllViolations(t *testing.T) {
	errs := validationErrors(t, ValidateSettings(GameSettings{Difficulty: "nope", TimeLimit: 1, QuestionCount: 1}))
	if len(errs) != 4 {
		t.Fatalf("expected every violated field reported, got %v", errs)
	}
}

func TestValidateAnswer(t *testing.T) {
	if err := ValidateAnswer("thumbs_up1"); err != nil {
		t.Fatalf("valid answer rejected: %v", err)
	}

	if errs := validationErrors(t, ValidateAnswer("")); len(errs) != 1 || !strings.Contains(errs[0], "required") {
		t.Fatalf("unexpected errors for empty answer: %v", errs)
	}
	if errs := validationErrors(t, ValidateAnswer("has spaces")); len(errs) != 1 || !strings.Contains(errs[0], "letters, numbers") {
		t.Fatalf("unexpected errors for bad characters: %v", errs)
	}
	long := strings.Repeat("a", 51)
	if errs := validationErrors(t, ValidateAnswer(long)); len(errs) != 1 || !strings.Contains(errs[0], "at most 50") {
		t.Fatalf("unexpected errors for long answer: %v", errs)
	}
}
