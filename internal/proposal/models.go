package proposal

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusPassed   Status = "passed"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
)

type Category string

const (
	CategoryProtocol  Category = "protocol"
	CategoryTreasury  Category = "treasury"
	CategoryRisk      Category = "risk"
	CategoryAsset     Category = "asset"
	CategoryCommunity Category = "community"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryProtocol, CategoryTreasury, CategoryRisk, CategoryAsset, CategoryCommunity:
		return true
	}

	return false
}

// Proposal is the durable record of a governance item. The tally fields are a
// denormalized cache over accepted votes and are mutated only inside the
// vote-accept transaction and never by callers directly.
type Proposal struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Proposer    string   `json:"proposer"`
	Status      Status   `json:"status"`

	VotesFor     int64 `json:"votes_for"`
	VotesAgainst int64 `json:"votes_against"`
	TotalVotes   int64 `json:"total_votes"`
	Quorum       int64 `json:"quorum"`

	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	ExecutionDate *time.Time `json:"execution_date,omitempty"`

	IpfsHash *string `json:"ipfs_hash,omitempty"`

	// DeadlineNotified keeps the voting_deadline reminder from firing twice
	DeadlineNotified bool `json:"-"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// Accepting returns whether the proposal accepts votes at the given moment.
// The window is inclusive at start and exclusive at the end: resolution runs
// at exactly EndDate.
func (p Proposal) Accepting(now time.Time) bool {
	if p.Status != StatusActive {
		return false
	}

	return !now.Before(p.StartDate) && now.Before(p.EndDate)
}

// Outcome applies the terminal rules: quorum must be reached and plain
// majority required, ties reject.
func (p Proposal) Outcome() Status {
	if p.TotalVotes >= p.Quorum && p.VotesFor > p.VotesAgainst {
		return StatusPassed
	}

	return StatusRejected
}

type Document struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time `json:"created_at"`

	ProposalID uuid.UUID `gorm:"index" json:"proposal_id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	FileType   string    `json:"file_type"`
	SizeBytes  *int64    `json:"size_bytes,omitempty"`
	UploadedBy string    `json:"uploaded_by"`
}

func (Document) TableName() string {
	return "proposal_documents"
}

// AISummary stores the generated digest of a proposal description
type AISummary struct {
	ProposalID uuid.UUID `gorm:"primary_key"`
	CreatedAt  time.Time
	Summary    string
}

func (AISummary) TableName() string {
	return "proposal_ai_summaries"
}

// AIRequest is the per-address ledger the monthly summary limit is counted on
type AIRequest struct {
	CreatedAt  time.Time
	Address    string
	ProposalID uuid.UUID
}

func (AIRequest) TableName() string {
	return "ai_requests"
}

type ProposalList struct {
	Proposals  []Proposal
	TotalCount int64
}
