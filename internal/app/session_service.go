package app

import (
	"context"
	"log"
	"time"

	"emoji-guess-service/internal/domain"
	"emoji-guess-service/internal/game"
	"emoji-guess-service/internal/ratelimit"

	"github.com/google/uuid"
)

// QuestionRepository returns a shuffled, filtered draw from the question bank.
type QuestionRepository interface {
	GetQuestions(ctx context.Context, criteria domain.QuestionCriteria) ([]domain.Question, error)
}

// SessionStore persists game sessions (in-memory, Redis, etc). Records carry
// a one-hour expiry enforced by the store.
type SessionStore interface {
	Save(ctx context.Context, session domain.GameSession) error
	Get(ctx context.Context, sessionID string) (domain.GameSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// LeaderboardStore records finished sessions and ranks them by score.
type LeaderboardStore interface {
	Add(ctx context.Context, entry domain.LeaderboardEntry) (int, error)
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// SessionService runs the stateless game variant: the same evaluation and
// scoring as the room actor, with all state in the session store between
// requests.
type SessionService struct {
	questions QuestionRepository
	sessions  SessionStore
	board     LeaderboardStore
	limiter   *ratelimit.Limiter
	answers   ratelimit.Quota

	now   func() time.Time
	newID func() string
}

func NewSessionService(questions QuestionRepository, sessions SessionStore, board LeaderboardStore, limiter *ratelimit.Limiter, answers ratelimit.Quota) *SessionService {
	return &SessionService{
		questions: questions,
		sessions:  sessions,
		board:     board,
		limiter:   limiter,
		answers:   answers,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// AnswerOutcome is the response to one submitted answer.
type AnswerOutcome struct {
	Correct        bool
	AcceptedSource domain.Source
	CorrectAnswers []string
	CurrentScore   int
}

// EndResult summarizes a finished session.
type EndResult struct {
	FinalScore      int
	TotalQuestions  int
	CorrectAnswers  int
	AvgTime         float64
	LeaderboardRank int
}

// Start validates the settings, draws the session's questions, and persists
// a fresh session record.
func (s *SessionService) Start(ctx context.Context, settings domain.GameSettings) (domain.GameSession, error) {
	if err := domain.ValidateSettings(settings); err != nil {
		return domain.GameSession{}, err
	}

	questions, err := s.questions.GetQuestions(ctx, domain.QuestionCriteria{
		Sources:    settings.Sources,
		Difficulty: settings.Difficulty,
		Count:      settings.QuestionCount,
	})
	if err != nil {
		log.Printf("question draw failed: %v", err)
		return domain.GameSession{}, domain.ErrEmptyQuestionPool
	}
	if len(questions) == 0 {
		return domain.GameSession{}, domain.ErrEmptyQuestionPool
	}

	session := domain.GameSession{
		SessionID: "session_" + s.newID(),
		UserID:    "user_" + s.newID(),
		Settings:  settings,
		Questions: questions,
		StartTime: s.now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("save session %s: %v", session.SessionID, err)
		return domain.GameSession{}, domain.ErrPersistence
	}
	return session, nil
}

// Answer evaluates one submission against the session's own question set and
// accumulates the score.
func (s *SessionService) Answer(ctx context.Context, sessionID, symbol, answer string, timeSpent float64) (AnswerOutcome, error) {
	if err := domain.ValidateAnswer(answer); err != nil {
		return AnswerOutcome{}, err
	}
	if allowed, retryAfter := s.limiter.Allow("answer:"+sessionID, s.answers); !allowed {
		return AnswerOutcome{}, &domain.RateLimitError{RetryAfter: retryAfter}
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return AnswerOutcome{}, err
	}
	if session.Ended() {
		return AnswerOutcome{}, domain.ErrSessionEnded
	}

	question, ok := session.FindQuestion(symbol)
	if !ok {
		return AnswerOutcome{}, domain.ErrUnknownQuestion
	}

	eval := game.Evaluate(answer, question, session.Settings.Sources)
	score := 0
	if eval.Correct {
		score = game.AnswerScore(timeSpent, session.Settings.TimeLimit, question.Difficulty)
	}

	session.Answers = append(session.Answers, domain.Answer{
		Symbol:         symbol,
		UserAnswer:     answer,
		CorrectAnswers: eval.CorrectAnswers,
		Source:         eval.AcceptedSource,
		TimeSpent:      timeSpent,
		Difficulty:     question.Difficulty,
		Correct:        eval.Correct,
	})
	session.Score += score

	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("save session %s: %v", sessionID, err)
		return AnswerOutcome{}, domain.ErrPersistence
	}

	return AnswerOutcome{
		Correct:        eval.Correct,
		AcceptedSource: eval.AcceptedSource,
		CorrectAnswers: eval.CorrectAnswers,
		CurrentScore:   session.Score,
	}, nil
}

// End closes the session, recomputes the final score from the answer log,
// and records the result on the leaderboard. Double-ending is rejected.
func (s *SessionService) End(ctx context.Context, sessionID, username string) (EndResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return EndResult{}, err
	}
	if session.Ended() {
		return EndResult{}, domain.ErrSessionEnded
	}

	endedAt := s.now()
	session.EndTime = &endedAt
	session.Score = game.SessionScore(session.Answers, session.Settings.TimeLimit)

	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("save session %s: %v", sessionID, err)
		return EndResult{}, domain.ErrPersistence
	}

	stats := game.SessionStats(session.Answers)

	if username == "" {
		username = session.UserID
	}
	rank, err := s.board.Add(ctx, domain.LeaderboardEntry{
		UserID:    session.UserID,
		Username:  username,
		Score:     session.Score,
		AvgTime:   stats.AvgTime,
		Sources:   session.Settings.Sources,
		Timestamp: endedAt,
	})
	if err != nil {
		// Leaderboard placement is best-effort; the session result stands.
		log.Printf("leaderboard add for %s: %v", session.UserID, err)
		rank = 0
	}

	return EndResult{
		FinalScore:      session.Score,
		TotalQuestions:  stats.TotalQuestions,
		CorrectAnswers:  stats.CorrectAnswers,
		AvgTime:         stats.AvgTime,
		LeaderboardRank: rank,
	}, nil
}

// Questions exposes the question bank draw for the read-only listing endpoint.
func (s *SessionService) Questions(ctx context.Context, criteria domain.QuestionCriteria) ([]domain.Question, error) {
	return s.questions.GetQuestions(ctx, criteria)
}

// Leaderboard returns the top entries, optionally filtered to results that
// played a given source.
func (s *SessionService) Leaderboard(ctx context.Context, limit int, source domain.Source) ([]domain.LeaderboardEntry, error) {
	entries, err := s.board.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	if source == "" {
		return entries, nil
	}
	filtered := make([]domain.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		for _, played := range entry.Sources {
			if played == source {
				filtered = append(filtered, entry)
				break
			}
		}
	}
	return filtered, nil
}
