package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"emoji-guess-service/internal/domain"
	"emoji-guess-service/internal/game"
	"emoji-guess-service/internal/ratelimit"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades connections and routes frames to room actors. A
// connection binds to at most one room for its lifetime; frames sent before
// binding are answered directly.
type WSHandler struct {
	manager  *game.Manager
	limiter  *ratelimit.Limiter
	global   ratelimit.Quota
	session  ratelimit.Quota
	upgrader websocket.Upgrader
}

func NewWSHandler(manager *game.Manager, limiter *ratelimit.Limiter, global, session ratelimit.Quota) *WSHandler {
	return &WSHandler{
		manager: manager,
		limiter: limiter,
		global:  global,
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and pumps frames between the connection and
// its room actor.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if allowed, retryAfter := h.limiter.Allow("ip:"+ip, h.global); !allowed {
		writeRateLimited(w, retryAfter)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	sess := newWSSession(conn)
	defer sess.close()

	var actor *game.RoomActor
	defer func() {
		if actor != nil {
			actor.Detach(sess.id)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg game.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			// Malformed frames get an error reply; the connection stays open.
			sess.Send(game.ErrorMessage{Type: game.TypeError, Error: domain.ErrMalformedMessage.Error()})
			continue
		}

		switch msg.Type {
		case game.TypeCreate:
			if actor != nil {
				actor.Deliver(sess.id, sess, msg)
				continue
			}
			if allowed, retryAfter := h.limiter.Allow("start:"+ip, h.session); !allowed {
				sess.Send(rateLimitFrame(retryAfter))
				continue
			}
			actor = h.manager.Create()
			actor.Deliver(sess.id, sess, msg)
		case game.TypeJoin:
			if actor != nil {
				actor.Deliver(sess.id, sess, msg)
				continue
			}
			if allowed, retryAfter := h.limiter.Allow("join:"+msg.RoomCode, h.session); !allowed {
				sess.Send(rateLimitFrame(retryAfter))
				continue
			}
			found, ok := h.manager.Lookup(msg.RoomCode)
			if !ok {
				sess.Send(game.ErrorMessage{Type: game.TypeError, Error: domain.ErrRoomNotFound.Error()})
				continue
			}
			actor = found
			actor.Deliver(sess.id, sess, msg)
		case game.TypeAnswer:
			if actor == nil {
				sess.Send(game.ErrorMessage{Type: game.TypeError, Error: domain.ErrGameNotActive.Error()})
				continue
			}
			actor.Deliver(sess.id, sess, msg)
		default:
			sess.Send(game.ErrorMessage{Type: game.TypeError, Error: domain.ErrUnknownMessage.Error()})
		}
	}
}

func rateLimitFrame(retryAfter time.Duration) game.ErrorMessage {
	err := &domain.RateLimitError{RetryAfter: retryAfter}
	return game.ErrorMessage{Type: game.TypeError, Error: err.Error()}
}

// wsSession owns one connection's outbound side: a buffered channel drained
// by a single writer goroutine, so per-recipient delivery order matches the
// order room transitions committed.
type wsSession struct {
	id   game.SessionID
	conn *websocket.Conn
	send chan any
	once sync.Once
	done chan struct{}
}

func newWSSession(conn *websocket.Conn) *wsSession {
	s := &wsSession{
		id:   game.SessionID(uuid.NewString()),
		conn: conn,
		send: make(chan any, 64),
		done: make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// Send never blocks the room actor. A consumer too slow to drain its buffer
// loses the connection instead of stalling the room.
func (s *wsSession) Send(msg any) {
	select {
	case s.send <- msg:
	case <-s.done:
	default:
		log.Printf("ws session %s: send buffer full, dropping connection", s.id)
		s.close()
	}
}

func (s *wsSession) writeLoop() {
	for {
		select {
		case msg := <-s.send:
			if err := s.conn.WriteJSON(msg); err != nil {
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *wsSession) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
