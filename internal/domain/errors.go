package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMalformedMessage is returned for unparseable frames; the connection stays open.
	ErrMalformedMessage = errors.New("invalid message format")
	// ErrUnknownMessage is returned for frames with an unrecognized type.
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrRoomAlreadyExists is returned when create is sent to a room that is past Empty.
	ErrRoomAlreadyExists = errors.New("room already exists")
	// ErrRoomNotFound is returned when a join targets a code with no live room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrGameEnded is returned when a join targets a room whose game finished.
	ErrGameEnded = errors.New("game has already ended")
	// ErrGameNotActive is returned for answers outside the Active phase.
	ErrGameNotActive = errors.New("game is not active")
	// ErrStaleQuestion is returned when an answer names a symbol other than the current one.
	ErrStaleQuestion = errors.New("answer does not match the current question")
	// ErrUnknownQuestion is returned when an answered symbol was never drawn for the session.
	ErrUnknownQuestion = errors.New("question not found in session")
	// ErrEmptyQuestionPool indicates no questions matched the selection criteria.
	ErrEmptyQuestionPool = errors.New("no questions found for the selected criteria")
	// ErrSessionNotFound indicates the session record is missing or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionEnded is returned when an ended session receives further operations.
	ErrSessionEnded = errors.New("session already ended")
	// ErrPersistence masks store write failures without leaking transport detail.
	ErrPersistence = errors.New("could not persist session")
)

// RateLimitError reports a denied request and how long to back off.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, ", ")
}
