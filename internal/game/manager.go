package game

import (
	"context"
	"sync"

	"emoji-guess-service/internal/ratelimit"

	"github.com/google/uuid"
)

// Manager places room actors: at most one live actor per room code. Actors
// retire themselves once their game ends and the last session leaves; the
// manager then forgets the code.
type Manager struct {
	ctx     context.Context
	source  QuestionSource
	limiter *ratelimit.Limiter
	answers ratelimit.Quota
	newID   func() string

	mu    sync.RWMutex
	rooms map[string]*RoomActor
}

func NewManager(ctx context.Context, source QuestionSource, limiter *ratelimit.Limiter, answers ratelimit.Quota) *Manager {
	return &Manager{
		ctx:     ctx,
		source:  source,
		limiter: limiter,
		answers: answers,
		newID:   uuid.NewString,
		rooms:   make(map[string]*RoomActor),
	}
}

// Create spins up a fresh actor under a new instance identifier and starts
// its loop. Identifiers are redrawn on the rare code collision with a live
// room, keeping the at-most-one guarantee per code.
func (m *Manager) Create() *RoomActor {
	m.mu.Lock()
	defer m.mu.Unlock()

	var actor *RoomActor
	for {
		actor = NewRoomActor(m.newID(), m.source, m.limiter, m.answers, m.remove)
		if _, taken := m.rooms[actor.Code()]; !taken {
			break
		}
	}
	m.rooms[actor.Code()] = actor
	go actor.Run(m.ctx)
	return actor
}

// Lookup resolves a room code to its live actor.
func (m *Manager) Lookup(code string) (*RoomActor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	actor, ok := m.rooms[code]
	return actor, ok
}

func (m *Manager) remove(actor *RoomActor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.rooms[actor.Code()]; ok && current == actor {
		delete(m.rooms, actor.Code())
	}
}
