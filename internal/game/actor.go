package game

import (
	"context"
	"log"
	"time"

	"emoji-guess-service/internal/domain"
	"emoji-guess-service/internal/ratelimit"
)

// roomQuestionCount is the fixed draw size for multiplayer rooms.
const roomQuestionCount = 10

// questionFetchTimeout bounds the one external call a room makes, the
// question draw at create time.
const questionFetchTimeout = 10 * time.Second

// QuestionSource returns a shuffled, filtered draw from the question bank.
type QuestionSource interface {
	GetQuestions(ctx context.Context, criteria domain.QuestionCriteria) ([]domain.Question, error)
}

// Sender delivers server frames to one connection. Implementations must
// preserve per-connection ordering and never block the caller.
type Sender interface {
	Send(msg any)
}

type commandKind int

const (
	cmdMessage commandKind = iota
	cmdDetach
)

type command struct {
	kind    commandKind
	session SessionID
	sender  Sender
	msg     ClientMessage
}

// RoomActor owns one Room and its session registry. Every mutation happens
// inside Run's loop, one command fully processed before the next, so the
// room state needs no locking. Exactly one actor exists per room code; the
// manager guarantees placement.
type RoomActor struct {
	id      string
	room    *Room
	source  QuestionSource
	limiter *ratelimit.Limiter
	answers ratelimit.Quota

	inbox    chan command
	done     chan struct{}
	sessions map[SessionID]Sender
	onStop   func(*RoomActor)
}

// NewRoomActor builds an actor whose room code is derived from the instance
// identifier. onStop is invoked once when the actor retires.
func NewRoomActor(id string, source QuestionSource, limiter *ratelimit.Limiter, answers ratelimit.Quota, onStop func(*RoomActor)) *RoomActor {
	return &RoomActor{
		id:       id,
		room:     NewRoom(RoomCodeFromID(id)),
		source:   source,
		limiter:  limiter,
		answers:  answers,
		inbox:    make(chan command, 64),
		done:     make(chan struct{}),
		sessions: make(map[SessionID]Sender),
		onStop:   onStop,
	}
}

// Code returns the actor's room code, fixed at construction.
func (a *RoomActor) Code() string {
	return a.room.Code()
}

// Deliver hands an inbound frame to the actor. Delivery is dropped if the
// actor has already retired.
func (a *RoomActor) Deliver(session SessionID, sender Sender, msg ClientMessage) {
	select {
	case a.inbox <- command{kind: cmdMessage, session: session, sender: sender, msg: msg}:
	case <-a.done:
		sender.Send(ErrorMessage{Type: TypeError, Error: domain.ErrRoomNotFound.Error()})
	}
}

// Detach removes a session from the registry. Room state is untouched;
// in-flight effects already committed are never cancelled.
func (a *RoomActor) Detach(session SessionID) {
	select {
	case a.inbox <- command{kind: cmdDetach, session: session}:
	case <-a.done:
	}
}

// Done is closed when the actor has retired.
func (a *RoomActor) Done() <-chan struct{} {
	return a.done
}

// Run processes commands until the context is cancelled or the game has
// ended and the last session detached.
func (a *RoomActor) Run(ctx context.Context) {
	defer func() {
		close(a.done)
		if a.onStop != nil {
			a.onStop(a)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-a.inbox:
			switch cmd.kind {
			case cmdMessage:
				a.handle(ctx, cmd)
			case cmdDetach:
				delete(a.sessions, cmd.session)
			}
			if a.room.Phase() == PhaseEnded && len(a.sessions) == 0 {
				return
			}
		}
	}
}

func (a *RoomActor) handle(ctx context.Context, cmd command) {
	var (
		out []Outbound
		err error
	)

	switch cmd.msg.Type {
	case TypeCreate:
		out, err = a.handleCreate(ctx, cmd)
	case TypeJoin:
		out, err = a.room.Join(cmd.session, cmd.msg.RoomCode)
		if err == nil {
			a.sessions[cmd.session] = cmd.sender
		}
	case TypeAnswer:
		if allowed, retryAfter := a.limiter.Allow("answer:"+string(cmd.session), a.answers); !allowed {
			err = &domain.RateLimitError{RetryAfter: retryAfter}
			break
		}
		out, err = a.room.Answer(cmd.session, cmd.msg.Symbol, cmd.msg.Answer)
	default:
		err = domain.ErrUnknownMessage
	}

	if err != nil {
		cmd.sender.Send(ErrorMessage{Type: TypeError, Error: err.Error()})
		return
	}
	a.dispatch(out)
}

// handleCreate performs the question draw synchronously inside the actor
// loop, so a second create cannot interleave with one in flight.
func (a *RoomActor) handleCreate(ctx context.Context, cmd command) ([]Outbound, error) {
	if a.room.Phase() != PhaseEmpty {
		return nil, domain.ErrRoomAlreadyExists
	}

	fetchCtx, cancel := context.WithTimeout(ctx, questionFetchTimeout)
	defer cancel()
	questions, err := a.source.GetQuestions(fetchCtx, domain.QuestionCriteria{
		Sources:    cmd.msg.Sources,
		Difficulty: domain.DifficultyAll,
		Count:      roomQuestionCount,
	})
	if err != nil {
		// The draw is best-effort: transport failures degrade to an empty
		// pool instead of leaking I/O errors to the client.
		log.Printf("room %s: question draw failed: %v", a.room.Code(), err)
		return nil, domain.ErrEmptyQuestionPool
	}

	out, err := a.room.Create(cmd.session, cmd.msg.Sources, questions)
	if err != nil {
		return nil, err
	}
	a.sessions[cmd.session] = cmd.sender
	return out, nil
}

func (a *RoomActor) dispatch(out []Outbound) {
	for _, o := range out {
		if o.Broadcast {
			for _, sender := range a.sessions {
				sender.Send(o.Msg)
			}
			continue
		}
		if sender, ok := a.sessions[o.To]; ok {
			sender.Send(o.Msg)
		}
	}
}
