package game

import "emoji-guess-service/internal/domain"

// Phase is the room's coarse lifecycle state.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseActive
	PhaseEnded
)

// answerRecord is the room's compact answer log entry.
type answerRecord struct {
	symbol  string
	correct bool
}

// Room holds one game's state. Transitions are plain methods returning the
// outbound frames they produce, so the state machine is testable without a
// live transport; all calls are serialized by the owning actor.
//
// Pacing invariant: the room keeps a single shared currentIndex and answer
// log. Any session's answer advances the room for everyone, but only the
// answering session is pushed the next question; game_end is the sole
// broadcast.
type Room struct {
	code      string
	sources   []domain.Source
	questions []domain.Question
	current   int
	answers   []answerRecord
	phase     Phase
}

// NewRoom returns a room in the Empty phase with its code already fixed.
// The code is derived from the owning actor's instance identifier before the
// room exists, so repeated lookups resolve consistently.
func NewRoom(code string) *Room {
	return &Room{code: code}
}

// Code returns the room's 6-character join code.
func (r *Room) Code() string {
	return r.code
}

// Phase returns the room's current lifecycle state.
func (r *Room) Phase() Phase {
	return r.phase
}

// Create activates the room with the drawn questions and registers the
// creating session's first frames: room_created followed by the first
// question. Valid only in the Empty phase.
func (r *Room) Create(from SessionID, sources []domain.Source, questions []domain.Question) ([]Outbound, error) {
	if r.phase != PhaseEmpty {
		return nil, domain.ErrRoomAlreadyExists
	}
	if len(questions) == 0 {
		return nil, domain.ErrEmptyQuestionPool
	}

	r.sources = sources
	r.questions = questions
	r.current = 0
	r.answers = nil
	r.phase = PhaseActive

	return []Outbound{
		unicast(from, RoomCreatedMessage{Type: TypeRoomCreated, RoomCode: r.code, Questions: questions}),
		unicast(from, QuestionMessage{Type: TypeQuestion, Question: questions[0]}),
	}, nil
}

// Join admits a session by room code. A late joiner is caught up with the
// question currently in progress, not the ones already passed.
func (r *Room) Join(from SessionID, roomCode string) ([]Outbound, error) {
	if r.phase == PhaseEmpty || r.code != roomCode {
		return nil, domain.ErrRoomNotFound
	}
	if r.phase == PhaseEnded {
		return nil, domain.ErrGameEnded
	}

	out := []Outbound{
		unicast(from, JoinedMessage{Type: TypeJoined, Questions: r.questions}),
	}
	if r.current < len(r.questions) {
		out = append(out, unicast(from, QuestionMessage{Type: TypeQuestion, Question: r.questions[r.current]}))
	}
	return out, nil
}

// Answer evaluates a submission against the current question, logs it, and
// advances the room. The result goes to the sender only; when the last
// question is answered the room ends and game_end goes to every session.
func (r *Room) Answer(from SessionID, symbol, answer string) ([]Outbound, error) {
	if r.phase != PhaseActive {
		return nil, domain.ErrGameNotActive
	}
	current := r.questions[r.current]
	if current.Symbol != symbol {
		return nil, domain.ErrStaleQuestion
	}

	eval := Evaluate(answer, current, r.sources)
	r.answers = append(r.answers, answerRecord{symbol: symbol, correct: eval.Correct})

	out := []Outbound{
		unicast(from, AnswerResultMessage{
			Type:           TypeAnswerResult,
			Correct:        eval.Correct,
			AcceptedSource: eval.AcceptedSource,
			CorrectAnswers: eval.CorrectAnswers,
		}),
	}

	r.current++
	if r.current == len(r.questions) {
		r.phase = PhaseEnded
		correct := 0
		for _, record := range r.answers {
			if record.correct {
				correct++
			}
		}
		out = append(out, broadcast(GameEndMessage{
			Type: TypeGameEnd,
			Stats: GameEndStats{
				TotalQuestions: len(r.questions),
				CorrectAnswers: correct,
			},
		}))
	} else {
		out = append(out, unicast(from, QuestionMessage{Type: TypeQuestion, Question: r.questions[r.current]}))
	}
	return out, nil
}
