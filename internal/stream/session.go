package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 45 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// ClientMessage is what a connected viewer sends to manage its subscriptions.
type ClientMessage struct {
	Action string `json:"action"` // subscribe, unsubscribe
	Topic  string `json:"topic"`
}

// ServerMessage wraps everything pushed to a viewer.
type ServerMessage struct {
	Type    string `json:"type"` // event, subscribed, unsubscribed, error
	Topic   string `json:"topic,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Session is one connected viewer. Events are pushed through a bounded
// channel; a viewer that cannot keep up loses events, which is acceptable
// because payloads are hints and clients re-fetch authoritative state.
type Session struct {
	ID uuid.UUID

	conn *websocket.Conn
	send chan ServerMessage

	mu     sync.Mutex
	topics map[string]struct{}

	closeOnce sync.Once
}

func newSession(conn *websocket.Conn) *Session {
	return &Session{
		ID:     uuid.New(),
		conn:   conn,
		send:   make(chan ServerMessage, sendBuffer),
		topics: make(map[string]struct{}),
	}
}

func (s *Session) subscribe(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics[topic] = struct{}{}
}

func (s *Session) unsubscribe(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.topics, topic)
}

func (s *Session) subscriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]string, 0, len(s.topics))
	for topic := range s.topics {
		res = append(res, topic)
	}

	return res
}

// push enqueues a message without blocking the hub
func (s *Session) push(msg ServerMessage) {
	select {
	case s.send <- msg:
	default:
		log.Warn().Str("session", s.ID.String()).Msg("slow session, message dropped")
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.send)
	})
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
