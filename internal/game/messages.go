package game

import "emoji-guess-service/internal/domain"

// SessionID identifies one connected participant. It is opaque to the game
// logic; the transport owns the mapping to an actual connection.
type SessionID string

// ClientMessage is one inbound frame, one JSON object per frame.
type ClientMessage struct {
	Type     string          `json:"type"`
	Sources  []domain.Source `json:"sources,omitempty"`  // create
	RoomCode string          `json:"roomCode,omitempty"` // join
	Symbol   string          `json:"symbol,omitempty"`   // answer
	Answer   string          `json:"answer,omitempty"`   // answer
	Source   domain.Source   `json:"source,omitempty"`   // answer (advisory, room decides)
}

const (
	TypeCreate = "create"
	TypeJoin   = "join"
	TypeAnswer = "answer"
)

// Server frame types.
const (
	TypeRoomCreated  = "room_created"
	TypeJoined       = "joined"
	TypeQuestion     = "question"
	TypeAnswerResult = "answer_result"
	TypeGameEnd      = "game_end"
	TypeError        = "error"
)

type RoomCreatedMessage struct {
	Type      string            `json:"type"`
	RoomCode  string            `json:"roomCode"`
	Questions []domain.Question `json:"questions"`
}

type JoinedMessage struct {
	Type      string            `json:"type"`
	Questions []domain.Question `json:"questions"`
}

type QuestionMessage struct {
	Type     string          `json:"type"`
	Question domain.Question `json:"question"`
}

type AnswerResultMessage struct {
	Type           string        `json:"type"`
	Correct        bool          `json:"correct"`
	AcceptedSource domain.Source `json:"acceptedSource"`
	CorrectAnswers []string      `json:"correctAnswers"`
}

type GameEndStats struct {
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
}

type GameEndMessage struct {
	Type  string       `json:"type"`
	Stats GameEndStats `json:"stats"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Outbound is a server frame addressed to one session, or to every
// registered session when Broadcast is set.
type Outbound struct {
	To        SessionID
	Broadcast bool
	Msg       any
}

func unicast(to SessionID, msg any) Outbound {
	return Outbound{To: to, Msg: msg}
}

func broadcast(msg any) Outbound {
	return Outbound{Broadcast: true, Msg: msg}
}
