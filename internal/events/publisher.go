package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher fans change events out to NATS. Delivery is at-least-once from
// the consumer's point of view: the same logical change may be visible on
// both the global and the scoped subject.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) PublishProposal(ev ProposalEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	// proposal events go to the global list channel and the per-proposal one
	if err := p.publish(SubjectProposals, KindProposal, ev); err != nil {
		return err
	}

	return p.publish(ProposalSubject(ev.ProposalID), KindProposal, ev)
}

func (p *Publisher) PublishVote(ev VoteEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	return p.publish(ProposalSubject(ev.ProposalID), KindVote, ev)
}

func (p *Publisher) PublishDiscussion(ev DiscussionEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	return p.publish(ProposalSubject(ev.ProposalID), KindDiscussion, ev)
}

func (p *Publisher) PublishNotification(ev NotificationEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	return p.publish(UserSubject(ev.UserAddress), KindNotification, ev)
}

func (p *Publisher) publish(subject, kind string, payload any) error {
	data, err := json.Marshal(Envelope{Kind: kind, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	log.Debug().Str("subject", subject).Str("kind", kind).Msg("event published")

	return nil
}
