package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNewProposal      Type = "new_proposal"
	TypeVotingDeadline   Type = "voting_deadline"
	TypeProposalPassed   Type = "proposal_passed"
	TypeProposalRejected Type = "proposal_rejected"
	TypeProposalExecuted Type = "proposal_executed"
)

// recentWindow bounds reads; rows are retained indefinitely
const recentWindow = 50

type Notification struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time `json:"created_at"`

	UserAddress string     `gorm:"index" json:"user_address"`
	Type        Type       `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	ProposalID  *uuid.UUID `json:"proposal_id,omitempty"`
	Read        bool       `json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}

type Inbox struct {
	Notifications []Notification
	UnreadCount   int64
}
