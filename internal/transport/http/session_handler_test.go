package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emoji-guess-service/internal/app"
	"emoji-guess-service/internal/domain"
	"emoji-guess-service/internal/infra/memory"
	"emoji-guess-service/internal/ratelimit"
)

func newSessionServer(t *testing.T, global, session ratelimit.Quota) *httptest.Server {
	t.Helper()
	limiter := ratelimit.New()
	service := app.NewSessionService(
		memory.NewQuestionRepository(memory.NewStaticQuestionLoader(wsQuestions()), time.Minute),
		memory.NewSessionStore(time.Hour),
		memory.NewLeaderboard(),
		limiter,
		looseQuota(),
	)
	handler := NewSessionHandler(service, limiter, global, session)

	mux := http.NewServeMux()
	handler.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func validSettings() domain.GameSettings {
	return domain.GameSettings{
		Sources:       []domain.Source{domain.SourceGitHub},
		Difficulty:    domain.DifficultyAll,
		TimeLimit:     30,
		QuestionCount: 5,
	}
}

func TestSessionFlowOverHTTP(t *testing.T) {
	server := newSessionServer(t, looseQuota(), looseQuota())

	resp := postJSON(t, server, "/session/start", startRequest{Settings: validSettings()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: status %d", resp.StatusCode)
	}
	var started startResponse
	decodeBody(t, resp, &started)
	if started.SessionID == "" || len(started.Questions) != 2 {
		t.Fatalf("unexpected start response: %+v", started)
	}

	resp = postJSON(t, server, "/session/answer", answerRequest{
		SessionID: started.SessionID,
		Symbol:    "😀",
		Answer:    "grinning",
		TimeSpent: 10,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer: status %d", resp.StatusCode)
	}
	var answered answerResponse
	decodeBody(t, resp, &answered)
	if !answered.Correct || answered.CurrentScore != 25 {
		t.Fatalf("unexpected answer response: %+v", answered)
	}

	resp = postJSON(t, server, "/session/end", endRequest{SessionID: started.SessionID, Username: "alice"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end: status %d", resp.StatusCode)
	}
	var ended endResponse
	decodeBody(t, resp, &ended)
	if ended.FinalScore != 25 || ended.TotalQuestions != 1 || ended.CorrectAnswers != 1 {
		t.Fatalf("unexpected end response: %+v", ended)
	}
	if ended.LeaderboardRank != 1 {
		t.Fatalf("expected rank 1, got %d", ended.LeaderboardRank)
	}

	// The finished run shows up on the board.
	boardResp, err := http.Get(server.URL + "/leaderboard")
	if err != nil {
		t.Fatalf("GET /leaderboard: %v", err)
	}
	defer boardResp.Body.Close()
	var board leaderboardResponse
	decodeBody(t, boardResp, &board)
	if len(board.Leaderboard) != 1 || board.Leaderboard[0].Username != "alice" {
		t.Fatalf("unexpected leaderboard: %+v", board)
	}
}

func TestStartRejectsBadSettings(t *testing.T) {
	server := newSessionServer(t, looseQuota(), looseQuota())

	settings := validSettings()
	settings.TimeLimit = 5
	settings.Sources = nil

	resp := postJSON(t, server, "/session/start", startRequest{Settings: settings})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body errorBody
	decodeBody(t, resp, &body)
	if len(body.Details) != 2 {
		t.Fatalf("expected a message per invalid field, got %+v", body.Details)
	}
}

func TestAnswerUnknownSessionIs404(t *testing.T) {
	server := newSessionServer(t, looseQuota(), looseQuota())

	resp := postJSON(t, server, "/session/answer", answerRequest{
		SessionID: "session_missing",
		Symbol:    "😀",
		Answer:    "grinning",
		TimeSpent: 10,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestEndTwiceIs400(t *testing.T) {
	server := newSessionServer(t, looseQuota(), looseQuota())

	resp := postJSON(t, server, "/session/start", startRequest{Settings: validSettings()})
	var started startResponse
	decodeBody(t, resp, &started)

	if resp := postJSON(t, server, "/session/end", endRequest{SessionID: started.SessionID}); resp.StatusCode != http.StatusOK {
		t.Fatalf("first end: status %d", resp.StatusCode)
	}
	resp = postJSON(t, server, "/session/end", endRequest{SessionID: started.SessionID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second end should be rejected, got %d", resp.StatusCode)
	}
}

func TestStartRateLimited(t *testing.T) {
	server := newSessionServer(t, looseQuota(), ratelimit.Quota{Max: 1, Window: time.Minute})

	if resp := postJSON(t, server, "/session/start", startRequest{Settings: validSettings()}); resp.StatusCode != http.StatusOK {
		t.Fatalf("first start: status %d", resp.StatusCode)
	}
	resp := postJSON(t, server, "/session/start", startRequest{Settings: validSettings()})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("429 must carry Retry-After")
	}
	var body errorBody
	decodeBody(t, resp, &body)
	if body.RetryAfter < 1 {
		t.Fatalf("body should echo the backoff, got %+v", body)
	}
}

func TestGlobalRateLimitCoversReadEndpoints(t *testing.T) {
	server := newSessionServer(t, ratelimit.Quota{Max: 1, Window: time.Minute}, looseQuota())

	first, err := http.Get(server.URL + "/questions")
	if err != nil {
		t.Fatalf("GET /questions: %v", err)
	}
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first read: status %d", first.StatusCode)
	}

	second, err := http.Get(server.URL + "/questions")
	if err != nil {
		t.Fatalf("GET /questions: %v", err)
	}
	second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.StatusCode)
	}
}

func TestQuestionsEndpointFilters(t *testing.T) {
	server := newSessionServer(t, looseQuota(), looseQuota())

	resp, err := http.Get(server.URL + "/questions?sources=github&count=1")
	if err != nil {
		t.Fatalf("GET /questions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body questionsResponse
	decodeBody(t, resp, &body)
	if len(body.Questions) != 1 {
		t.Fatalf("expected a single question, got %d", len(body.Questions))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newSessionServer(t, looseQuota(), looseQuota())

	resp, err := http.Get(server.URL + "/session/start")
	if err != nil {
		t.Fatalf("GET /session/start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
