package events

import (
	"time"

	"github.com/google/uuid"
)

// Subjects the service publishes to. Per-proposal and per-user subjects are
// derived from the prefixes below so the stream gateway can subscribe with a
// single wildcard.
const (
	SubjectProposals      = "governance.proposals"
	SubjectProposalPrefix = "governance.proposal."
	SubjectUserPrefix     = "governance.user."
)

func ProposalSubject(id uuid.UUID) string {
	return SubjectProposalPrefix + id.String()
}

func UserSubject(address string) string {
	return SubjectUserPrefix + address
}

type ProposalAction string

const (
	ProposalCreated       ProposalAction = "created"
	ProposalTallyUpdated  ProposalAction = "tally_updated"
	ProposalStatusChanged ProposalAction = "status_changed"
)

// ProposalEvent carries a hint about a proposal mutation. Tally fields are
// advisory; consumers re-fetch the proposal for authoritative numbers.
type ProposalEvent struct {
	Action       ProposalAction `json:"action"`
	ProposalID   uuid.UUID      `json:"proposal_id"`
	Status       string         `json:"status,omitempty"`
	VotesFor     int64          `json:"votes_for,omitempty"`
	VotesAgainst int64          `json:"votes_against,omitempty"`
	TotalVotes   int64          `json:"total_votes,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

type VoteEvent struct {
	VoteID      uuid.UUID `json:"vote_id"`
	ProposalID  uuid.UUID `json:"proposal_id"`
	UserAddress string    `json:"user_address"`
	Support     bool      `json:"support"`
	VotingPower int64     `json:"voting_power"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type DiscussionEvent struct {
	DiscussionID uuid.UUID  `json:"discussion_id"`
	ProposalID   uuid.UUID  `json:"proposal_id"`
	UserAddress  string     `json:"user_address"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

type NotificationEvent struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	UserAddress    string     `json:"user_address"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ProposalID     *uuid.UUID `json:"proposal_id,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// Envelope is the wire format for every published event.
type Envelope struct {
	Kind    string `json:"kind"` // proposal, vote, discussion, notification
	Payload any    `json:"payload"`
}

const (
	KindProposal     = "proposal"
	KindVote         = "vote"
	KindDiscussion   = "discussion"
	KindNotification = "notification"
)
