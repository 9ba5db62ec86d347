package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/novalend/governance-storage/internal/events"
	"github.com/novalend/governance-storage/internal/metrics"
)

// Hub bridges NATS change events to connected websocket viewers. Delivery is
// at-least-once and unordered across channels; within a single row changes
// arrive in commit order from the publisher.
type Hub struct {
	conn     *nats.Conn
	registry *Registry

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	subs []*nats.Subscription
}

func NewHub(conn *nats.Conn) *Hub {
	return &Hub{
		conn:     conn,
		registry: NewRegistry(),
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (h *Hub) Start(ctx context.Context) error {
	subjects := []string{
		events.SubjectProposals,
		events.SubjectProposalPrefix + "*",
		events.SubjectUserPrefix + "*",
	}

	for _, subject := range subjects {
		sub, err := h.conn.Subscribe(subject, h.route)
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}

		h.subs = append(h.subs, sub)
	}

	log.Info().Msg("stream hub started")

	<-ctx.Done()

	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Msg("unsubscribe stream hub")
		}
	}

	h.closeAll()

	return nil
}

// closeAll tears every remaining session down on shutdown, dropping whole
// topics at once since nobody is left to receive on them.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.sessions {
		for _, topic := range s.subscriptions() {
			h.registry.RemoveTopic(topic)
		}

		s.close()
	}

	h.sessions = make(map[uuid.UUID]*Session)
	metrics.StreamSessionsGauge.Set(0)
}

func (h *Hub) route(msg *nats.Msg) {
	topic := topicForSubject(msg.Subject)
	if topic == "" {
		return
	}

	ids, ok := h.registry.Get(topic)
	if !ok {
		return
	}

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("malformed event payload")
		return
	}

	out := ServerMessage{
		Type:    "event",
		Topic:   topic,
		Payload: envelope,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range ids {
		if session, ok := h.sessions[id]; ok {
			session.push(out)
		}
	}
}

func (h *Hub) add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s.ID] = s
	metrics.StreamSessionsGauge.Set(float64(len(h.sessions)))
}

// remove tears the session down and drops all its channel subscriptions so a
// re-connecting viewer never receives duplicate deliveries from a leaked
// registration.
func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	metrics.StreamSessionsGauge.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	for _, topic := range s.subscriptions() {
		h.registry.Remove(topic, s.ID)
	}

	s.close()
}

func (h *Hub) subscribe(s *Session, topic string) {
	s.subscribe(topic)
	h.registry.Add(topic, s.ID)
}

func (h *Hub) unsubscribe(s *Session, topic string) {
	s.unsubscribe(topic)
	h.registry.Remove(topic, s.ID)
}
