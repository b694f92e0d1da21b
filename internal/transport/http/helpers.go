package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"time"

	"emoji-guess-service/internal/domain"
)

// clientIP prefers proxy-supplied headers so rate limiting keys on the real
// caller, falling back to the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

type errorBody struct {
	Error      string   `json:"error"`
	Details    []string `json:"details,omitempty"`
	RetryAfter int      `json:"retryAfter,omitempty"` // seconds
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	writeJSON(w, http.StatusTooManyRequests, errorBody{
		Error:      "rate limit exceeded, please try again later",
		RetryAfter: seconds,
	})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Every
// mapped error ends the single request; nothing here is fatal to the server.
func writeError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error(), Details: validation.Errors})
		return
	}
	var limited *domain.RateLimitError
	if errors.As(err, &limited) {
		writeRateLimited(w, limited.RetryAfter)
		return
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrSessionEnded),
		errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrEmptyQuestionPool),
		errors.Is(err, domain.ErrGameNotActive):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrPersistence):
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	default:
		log.Printf("unhandled error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
