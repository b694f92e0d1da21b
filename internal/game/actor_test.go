package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"emoji-guess-service/internal/domain"
	"emoji-guess-service/internal/ratelimit"
)

type fakeSender struct {
	frames chan any
}

func newFakeSender() *fakeSender {
	return &fakeSender{frames: make(chan any, 32)}
}

func (f *fakeSender) Send(msg any) {
	f.frames <- msg
}

func (f *fakeSender) next(t *testing.T) any {
	t.Helper()
	select {
	case msg := <-f.frames:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for frame")
		return nil
	}
}

type staticSource struct {
	questions []domain.Question
	err       error
}

func (s *staticSource) GetQuestions(_ context.Context, _ domain.QuestionCriteria) ([]domain.Question, error) {
	return s.questions, s.err
}

func relaxedQuota() ratelimit.Quota {
	return ratelimit.Quota{Max: 1000, Window: time.Second}
}

func startActor(t *testing.T, source QuestionSource, limiter *ratelimit.Limiter, answers ratelimit.Quota) *RoomActor {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	actor := NewRoomActor("actor-under-test", source, limiter, answers, nil)
	go actor.Run(ctx)
	return actor
}

func TestActorFullGame(t *testing.T) {
	source := &staticSource{questions: roomQuestions()}
	actor := startActor(t, source, ratelimit.New(), relaxedQuota())

	creator := newFakeSender()
	actor.Deliver("s1", creator, ClientMessage{Type: TypeCreate, Sources: []domain.Source{domain.SourceGitHub}})

	created, ok := creator.next(t).(RoomCreatedMessage)
	if !ok {
		t.Fatalf("expected room_created first")
	}
	if created.RoomCode != actor.Code() || len(created.RoomCode) != 6 {
		t.Fatalf("unexpected room code %q", created.RoomCode)
	}
	if q, ok := creator.next(t).(QuestionMessage); !ok || q.Question.Symbol != "😀" {
		t.Fatalf("expected first question push")
	}

	// Second participant joins mid-game and is caught up.
	joiner := newFakeSender()
	actor.Deliver("s2", joiner, ClientMessage{Type: TypeJoin, RoomCode: created.RoomCode})
	if _, ok := joiner.next(t).(JoinedMessage); !ok {
		t.Fatalf("expected joined frame")
	}
	if q, ok := joiner.next(t).(QuestionMessage); !ok || q.Question.Symbol != "😀" {
		t.Fatalf("expected catch-up question")
	}

	actor.Deliver("s1", creator, ClientMessage{Type: TypeAnswer, Symbol: "😀", Answer: "grinning"})
	if result, ok := creator.next(t).(AnswerResultMessage); !ok || !result.Correct {
		t.Fatalf("expected correct answer_result")
	}
	if q, ok := creator.next(t).(QuestionMessage); !ok || q.Question.Symbol != "🚀" {
		t.Fatalf("expected next question for the answering session only")
	}

	actor.Deliver("s1", creator, ClientMessage{Type: TypeAnswer, Symbol: "🚀", Answer: "nope"})
	if result, ok := creator.next(t).(AnswerResultMessage); !ok || result.Correct {
		t.Fatalf("expected incorrect answer_result")
	}

	// game_end reaches every registered session.
	for name, sender := range map[string]*fakeSender{"creator": creator, "joiner": joiner} {
		end, ok := sender.next(t).(GameEndMessage)
		if !ok {
			t.Fatalf("%s: expected game_end broadcast", name)
		}
		if end.Stats.TotalQuestions != 2 || end.Stats.CorrectAnswers != 1 {
			t.Fatalf("%s: unexpected stats %+v", name, end.Stats)
		}
	}
}

func TestActorCreateTwiceFails(t *testing.T) {
	actor := startActor(t, &staticSource{questions: roomQuestions()}, ratelimit.New(), relaxedQuota())

	sender := newFakeSender()
	actor.Deliver("s1", sender, ClientMessage{Type: TypeCreate, Sources: []domain.Source{domain.SourceGitHub}})
	sender.next(t) // room_created
	sender.next(t) // question

	actor.Deliver("s1", sender, ClientMessage{Type: TypeCreate, Sources: []domain.Source{domain.SourceGitHub}})
	errFrame, ok := sender.next(t).(ErrorMessage)
	if !ok || errFrame.Error != domain.ErrRoomAlreadyExists.Error() {
		t.Fatalf("expected room already exists error, got %+v", errFrame)
	}
}

func TestActorEmptyPoolDegradesSourceFailure(t *testing.T) {
	actor := startActor(t, &staticSource{err: context.DeadlineExceeded}, ratelimit.New(), relaxedQuota())

	sender := newFakeSender()
	actor.Deliver("s1", sender, ClientMessage{Type: TypeCreate, Sources: []domain.Source{domain.SourceGitHub}})
	errFrame, ok := sender.next(t).(ErrorMessage)
	if !ok || errFrame.Error != domain.ErrEmptyQuestionPool.Error() {
		t.Fatalf("expected empty pool error, got %+v", errFrame)
	}
}

func TestActorAnswerRateLimit(t *testing.T) {
	now := time.Unix(1700000000, 0)
	limiter := ratelimit.NewWithClock(func() time.Time { return now })
	actor := startActor(t, &staticSource{questions: roomQuestions()}, limiter, ratelimit.Quota{Max: 1, Window: time.Second})

	sender := newFakeSender()
	actor.Deliver("s1", sender, ClientMessage{Type: TypeCreate, Sources: []domain.Source{domain.SourceGitHub}})
	sender.next(t) // room_created
	sender.next(t) // question

	actor.Deliver("s1", sender, ClientMessage{Type: TypeAnswer, Symbol: "😀", Answer: "grinning"})
	sender.next(t) // answer_result
	sender.next(t) // next question

	actor.Deliver("s1", sender, ClientMessage{Type: TypeAnswer, Symbol: "🚀", Answer: "rocket"})
	errFrame, ok := sender.next(t).(ErrorMessage)
	if !ok || !strings.Contains(errFrame.Error, "rate limit") {
		t.Fatalf("expected rate limit error, got %+v", errFrame)
	}
}

func TestActorRetiresAfterGameEndsAndLastDetach(t *testing.T) {
	actor := startActor(t, &staticSource{questions: roomQuestions()[:1]}, ratelimit.New(), relaxedQuota())

	sender := newFakeSender()
	actor.Deliver("s1", sender, ClientMessage{Type: TypeCreate, Sources: []domain.Source{domain.SourceGitHub}})
	sender.next(t) // room_created
	sender.next(t) // question
	actor.Deliver("s1", sender, ClientMessage{Type: TypeAnswer, Symbol: "😀", Answer: "grinning"})
	sender.next(t) // answer_result
	sender.next(t) // game_end

	actor.Detach("s1")
	select {
	case <-actor.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("actor should retire once the game ended and the registry emptied")
	}
}

func TestManagerPlacement(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := NewManager(ctx, &staticSource{questions: roomQuestions()}, ratelimit.New(), relaxedQuota())

	actor := manager.Create()
	if len(actor.Code()) != 6 {
		t.Fatalf("expected 6-character code, got %q", actor.Code())
	}
	found, ok := manager.Lookup(actor.Code())
	if !ok || found != actor {
		t.Fatalf("lookup should resolve the live actor")
	}
	if _, ok := manager.Lookup("NOPE99"); ok {
		t.Fatalf("unknown codes must not resolve")
	}

	other := manager.Create()
	if other.Code() == actor.Code() {
		t.Fatalf("two live rooms must not share a code")
	}
}

func TestManagerForgetsRetiredActor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := NewManager(ctx, &staticSource{questions: roomQuestions()[:1]}, ratelimit.New(), relaxedQuota())
	actor := manager.Create()

	sender := newFakeSender()
	actor.Deliver("s1", sender, ClientMessage{Type: TypeCreate, Sources: []domain.Source{domain.SourceGitHub}})
	sender.next(t)
	sender.next(t)
	actor.Deliver("s1", sender, ClientMessage{Type: TypeAnswer, Symbol: "😀", Answer: "grinning"})
	sender.next(t)
	sender.next(t)
	actor.Detach("s1")

	<-actor.Done()
	deadline := time.After(2 * time.Second)
	for {
		if _, ok := manager.Lookup(actor.Code()); !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("manager should forget a retired actor's code")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
