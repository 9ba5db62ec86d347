package stream

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type Server struct {
	hub *Hub
}

func NewServer(hub *Hub) *Server {
	return &Server{
		hub: hub,
	}
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("upgrade websocket connection")
		return
	}

	session := newSession(conn)
	s.hub.add(session)

	log.Info().
		Str("session", session.ID.String()).
		Str("remote_addr", r.RemoteAddr).
		Msg("stream session connected")

	go session.writePump()
	s.readPump(session)
}

func (s *Server) readPump(session *Session) {
	defer func() {
		s.hub.remove(session)
		log.Info().Str("session", session.ID.String()).Msg("stream session closed")
	}()

	session.conn.SetReadLimit(maxMessageSize)
	_ = session.conn.SetReadDeadline(time.Now().Add(pongWait))
	session.conn.SetPongHandler(func(string) error {
		return session.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", session.ID.String()).Msg("unexpected close")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			session.push(ServerMessage{Type: "error", Payload: "malformed message"})
			continue
		}

		s.handleMessage(session, msg)
	}
}

func (s *Server) handleMessage(session *Session, msg ClientMessage) {
	if !validTopic(msg.Topic) {
		session.push(ServerMessage{Type: "error", Topic: msg.Topic, Payload: "unknown topic"})
		return
	}

	switch msg.Action {
	case "subscribe":
		s.hub.subscribe(session, msg.Topic)
		session.push(ServerMessage{Type: "subscribed", Topic: msg.Topic})
	case "unsubscribe":
		s.hub.unsubscribe(session, msg.Topic)
		session.push(ServerMessage{Type: "unsubscribed", Topic: msg.Topic})
	default:
		session.push(ServerMessage{Type: "error", Payload: "unknown action"})
	}
}
