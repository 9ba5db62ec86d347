package discussion

import (
	"time"

	"github.com/google/uuid"
)

// Discussion is an append-only comment on a proposal, optionally threaded
// under a parent comment of the same proposal.
type Discussion struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProposalID  uuid.UUID  `gorm:"index" json:"proposal_id"`
	UserAddress string     `json:"user_address"`
	UserName    *string    `json:"user_name,omitempty"`
	Message     string     `json:"message"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

func (Discussion) TableName() string {
	return "discussions"
}
