package domain

import "time"

// Source is a shortcode convention that supplies accepted answers for a symbol.
type Source string

const (
	SourceGitHub  Source = "github"
	SourceSlack   Source = "slack"
	SourceDiscord Source = "discord"
	SourceUnicode Source = "unicode"
)

// KnownSources lists every source the question bank can carry answers for.
var KnownSources = []Source{SourceGitHub, SourceSlack, SourceDiscord, SourceUnicode}

// Difficulty selects a band of question difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyAll    Difficulty = "all"
)

// Question pairs a symbol (the emoji shown to players) with the per-source
// answer lists used to judge submissions. Immutable once drawn into a game.
type Question struct {
	Symbol     string              `json:"symbol"`
	Answers    map[Source][]string `json:"answers"`
	Category   string              `json:"category"`
	Difficulty int                 `json:"difficulty"` // 1 (easy) to 3 (hard)
}

// HasSource reports whether the question carries answers for the source.
func (q Question) HasSource(source Source) bool {
	return len(q.Answers[source]) > 0
}

// Matches reports whether the question fits the selection criteria: at least
// one requested source must have answers, and the difficulty band must cover
// the question's level.
func (q Question) Matches(sources []Source, difficulty Difficulty) bool {
	hasSource := false
	for _, source := range sources {
		if q.HasSource(source) {
			hasSource = true
			break
		}
	}
	if !hasSource {
		return false
	}
	switch difficulty {
	case DifficultyEasy:
		return q.Difficulty == 1
	case DifficultyMedium:
		return q.Difficulty == 2
	case DifficultyHard:
		return q.Difficulty == 3
	default:
		return true
	}
}

// QuestionCriteria filters and sizes a draw from the question bank.
type QuestionCriteria struct {
	Sources    []Source
	Difficulty Difficulty
	Count      int
}

// GameSettings configures a stateless game session. Validated once at session
// start and immutable afterwards.
type GameSettings struct {
	Sources       []Source   `json:"sources"`
	Difficulty    Difficulty `json:"difficulty"`
	TimeLimit     int        `json:"timeLimit"` // seconds per question
	QuestionCount int        `json:"questionCount"`
}

// Answer is the rich per-question record kept by the stateless variant.
// Difficulty is captured at answer time so the final score can be recomputed
// without refetching questions.
type Answer struct {
	Symbol         string   `json:"symbol"`
	UserAnswer     string   `json:"userAnswer"`
	CorrectAnswers []string `json:"correctAnswers"`
	Source         Source   `json:"source,omitempty"` // accepting source, empty when incorrect
	TimeSpent      float64  `json:"timeSpent"`        // seconds
	Difficulty     int      `json:"difficulty"`
	Correct        bool     `json:"correct"`
}

// GameSession is the persisted state of one stateless game.
type GameSession struct {
	SessionID string       `json:"sessionId"`
	UserID    string       `json:"userId"`
	Settings  GameSettings `json:"settings"`
	Questions []Question   `json:"questions"`
	Score     int          `json:"score"`
	Answers   []Answer     `json:"answers"`
	StartTime time.Time    `json:"startTime"`
	EndTime   *time.Time   `json:"endTime"`
}

// Ended reports whether the session has been closed.
func (s GameSession) Ended() bool {
	return s.EndTime != nil
}

// FindQuestion returns the session's question for a symbol.
func (s GameSession) FindQuestion(symbol string) (Question, bool) {
	for _, q := range s.Questions {
		if q.Symbol == symbol {
			return q, true
		}
	}
	return Question{}, false
}

// SessionStats aggregates a finished (or in-progress) answer log.
type SessionStats struct {
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	Accuracy       float64 `json:"accuracy"` // percent
	AvgTime        float64 `json:"avgTime"`  // seconds, 2 decimals
	TotalTime      float64 `json:"totalTime"`
}

// LeaderboardEntry is one ranked result on the global board.
type LeaderboardEntry struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	AvgTime   float64   `json:"avgTime"`
	Sources   []Source  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}
