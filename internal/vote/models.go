package vote

import (
	"time"

	"github.com/google/uuid"
)

// Vote is an accepted ballot. Rows are immutable once committed; there is no
// vote editing or retraction. The composite unique index is the duplicate
// vote guard: at most one row per (proposal, voter).
type Vote struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time `json:"created_at"`

	ProposalID  uuid.UUID `gorm:"uniqueIndex:idx_votes_proposal_voter" json:"proposal_id"`
	UserAddress string    `gorm:"uniqueIndex:idx_votes_proposal_voter" json:"user_address"`

	Support     bool  `json:"support"`
	VotingPower int64 `json:"voting_power"`

	Reason          *string `json:"reason,omitempty"`
	TransactionHash *string `json:"transaction_hash,omitempty"`
}

func (Vote) TableName() string {
	return "votes"
}

type VoteList struct {
	Votes      []Vote
	TotalCount int64
}
