package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"emoji-guess-service/internal/app"
	"emoji-guess-service/internal/domain"
	"emoji-guess-service/internal/ratelimit"
)

// SessionHandler exposes the stateless game variant over plain HTTP.
type SessionHandler struct {
	service *app.SessionService
	limiter *ratelimit.Limiter
	global  ratelimit.Quota
	session ratelimit.Quota
}

func NewSessionHandler(service *app.SessionService, limiter *ratelimit.Limiter, global, session ratelimit.Quota) *SessionHandler {
	return &SessionHandler{service: service, limiter: limiter, global: global, session: session}
}

// Register mounts the handler's routes on the mux.
func (h *SessionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/session/start", h.handleStart)
	mux.HandleFunc("/session/answer", h.handleAnswer)
	mux.HandleFunc("/session/end", h.handleEnd)
	mux.HandleFunc("/questions", h.handleQuestions)
	mux.HandleFunc("/leaderboard", h.handleLeaderboard)
}

// guard applies the global per-IP quota (and optionally the session-operation
// quota) before a handler runs. It reports whether the request may proceed.
func (h *SessionHandler) guard(w http.ResponseWriter, r *http.Request, sessionOp bool) bool {
	ip := clientIP(r)
	if allowed, retryAfter := h.limiter.Allow("ip:"+ip, h.global); !allowed {
		writeRateLimited(w, retryAfter)
		return false
	}
	if sessionOp {
		if allowed, retryAfter := h.limiter.Allow("start:"+ip, h.session); !allowed {
			writeRateLimited(w, retryAfter)
			return false
		}
	}
	return true
}

type startRequest struct {
	Settings domain.GameSettings `json:"settings"`
}

type startResponse struct {
	SessionID string            `json:"sessionId"`
	Questions []domain.Question `json:"questions"`
}

func (h *SessionHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.guard(w, r, true) {
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	session, err := h.service.Start(r.Context(), req.Settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{SessionID: session.SessionID, Questions: session.Questions})
}

type answerRequest struct {
	SessionID string  `json:"sessionId"`
	Symbol    string  `json:"symbol"`
	Answer    string  `json:"answer"`
	TimeSpent float64 `json:"timeSpentSeconds"`
}

type answerResponse struct {
	Correct        bool          `json:"correct"`
	AcceptedSource domain.Source `json:"acceptedSource"`
	CorrectAnswers []string      `json:"correctAnswers"`
	CurrentScore   int           `json:"currentScore"`
}

func (h *SessionHandler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.guard(w, r, false) {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	outcome, err := h.service.Answer(r.Context(), req.SessionID, req.Symbol, req.Answer, req.TimeSpent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Correct:        outcome.Correct,
		AcceptedSource: outcome.AcceptedSource,
		CorrectAnswers: outcome.CorrectAnswers,
		CurrentScore:   outcome.CurrentScore,
	})
}

type endRequest struct {
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
}

type endResponse struct {
	FinalScore      int     `json:"finalScore"`
	TotalQuestions  int     `json:"totalQuestions"`
	CorrectAnswers  int     `json:"correctAnswers"`
	AvgTime         float64 `json:"avgTime"`
	LeaderboardRank int     `json:"leaderboardRank"`
}

func (h *SessionHandler) handleEnd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.guard(w, r, true) {
		return
	}

	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	result, err := h.service.End(r.Context(), req.SessionID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, endResponse{
		FinalScore:      result.FinalScore,
		TotalQuestions:  result.TotalQuestions,
		CorrectAnswers:  result.CorrectAnswers,
		AvgTime:         result.AvgTime,
		LeaderboardRank: result.LeaderboardRank,
	})
}

type questionsResponse struct {
	Questions []domain.Question `json:"questions"`
}

func (h *SessionHandler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.guard(w, r, false) {
		return
	}

	criteria := domain.QuestionCriteria{Difficulty: domain.Difficulty(r.URL.Query().Get("difficulty"))}
	if raw := r.URL.Query().Get("sources"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			criteria.Sources = append(criteria.Sources, domain.Source(s))
		}
	} else {
		criteria.Sources = domain.KnownSources
	}
	if raw := r.URL.Query().Get("count"); raw != "" {
		if count, err := strconv.Atoi(raw); err == nil {
			criteria.Count = count
		}
	}

	questions, err := h.service.Questions(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}

type leaderboardResponse struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

func (h *SessionHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.guard(w, r, false) {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	source := domain.Source(r.URL.Query().Get("source"))

	entries, err := h.service.Leaderboard(r.Context(), limit, source)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
}
