package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/novalend/governance-storage/internal/events"
	"github.com/novalend/governance-storage/internal/metrics"
	"github.com/novalend/governance-storage/internal/proposal"
)

var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalNotActive = errors.New("proposal is not accepting votes")
	ErrNoVotingPower     = errors.New("no voting power")
	ErrDuplicateVote     = errors.New("already voted on this proposal")
)

type Ledger interface {
	CreateWithTally(*Vote) error
	GetByProposal(proposalID uuid.UUID, limit, offset int) (VoteList, error)
}

type ProposalProvider interface {
	GetByID(id uuid.UUID) (*proposal.Proposal, error)
}

type PowerProvider interface {
	VotingPower(ctx context.Context, address string) (int64, error)
}

type Publisher interface {
	PublishVote(ev events.VoteEvent) error
	PublishProposal(ev events.ProposalEvent) error
}

type Service struct {
	ledger    Ledger
	proposals ProposalProvider
	power     PowerProvider
	pub       Publisher
}

func NewService(ledger Ledger, proposals ProposalProvider, power PowerProvider, pub Publisher) *Service {
	return &Service{
		ledger:    ledger,
		proposals: proposals,
		power:     power,
		pub:       pub,
	}
}

type CastRequest struct {
	ProposalID      uuid.UUID
	Voter           string
	Support         bool
	Reason          *string
	TransactionHash *string
}

// Cast accepts a ballot for an active proposal. Voting power is snapshotted
// from the staking oracle at cast time. The insert and the tally increment
// commit together; on any failure the tally is left exactly as it was.
func (s *Service) Cast(ctx context.Context, req CastRequest) (*Vote, error) {
	if req.Voter == "" {
		return nil, fmt.Errorf("%w: empty voter address", ErrNoVotingPower)
	}

	p, err := s.proposals.GetByID(req.ProposalID)
	if errors.Is(err, proposal.ErrNotFound) {
		metrics.CollectVoteRejected("proposal_not_found")
		return nil, ErrProposalNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	if !p.Accepting(time.Now()) {
		metrics.CollectVoteRejected("not_active")
		return nil, ErrProposalNotActive
	}

	power, err := s.power.VotingPower(ctx, req.Voter)
	if err != nil {
		return nil, fmt.Errorf("get voting power: %w", err)
	}

	if power <= 0 {
		metrics.CollectVoteRejected("no_power")
		return nil, ErrNoVotingPower
	}

	v := Vote{
		ID:              uuid.New(),
		CreatedAt:       time.Now(),
		ProposalID:      req.ProposalID,
		UserAddress:     req.Voter,
		Support:         req.Support,
		VotingPower:     power,
		Reason:          req.Reason,
		TransactionHash: req.TransactionHash,
	}

	err = s.ledger.CreateWithTally(&v)
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		metrics.CollectVoteRejected("duplicate")
		return nil, ErrDuplicateVote
	case errors.Is(err, gorm.ErrRecordNotFound):
		metrics.CollectVoteRejected("proposal_not_found")
		return nil, ErrProposalNotFound
	case errors.Is(err, ErrProposalNotActive):
		// the proposal was resolved between the window check and the commit
		metrics.CollectVoteRejected("not_active")
		return nil, ErrProposalNotActive
	case err != nil:
		return nil, fmt.Errorf("store vote: %w", err)
	}

	metrics.CollectVoteAccepted(v.Support)

	s.publishAccepted(p, v)

	return &v, nil
}

func (s *Service) publishAccepted(p *proposal.Proposal, v Vote) {
	if err := s.pub.PublishVote(events.VoteEvent{
		VoteID:      v.ID,
		ProposalID:  v.ProposalID,
		UserAddress: v.UserAddress,
		Support:     v.Support,
		VotingPower: v.VotingPower,
	}); err != nil {
		log.Warn().Err(err).Str("vote", v.ID.String()).Msg("publish vote")
	}

	// tally numbers here are a hint only, viewers re-fetch the proposal
	votesFor, votesAgainst := p.VotesFor, p.VotesAgainst
	if v.Support {
		votesFor += v.VotingPower
	} else {
		votesAgainst += v.VotingPower
	}

	if err := s.pub.PublishProposal(events.ProposalEvent{
		Action:       events.ProposalTallyUpdated,
		ProposalID:   p.ID,
		Status:       string(p.Status),
		VotesFor:     votesFor,
		VotesAgainst: votesAgainst,
		TotalVotes:   votesFor + votesAgainst,
	}); err != nil {
		log.Warn().Err(err).Str("proposal", p.ID.String()).Msg("publish tally update")
	}
}

func (s *Service) GetByProposal(proposalID uuid.UUID, limit, offset int) (VoteList, error) {
	list, err := s.ledger.GetByProposal(proposalID, limit, offset)
	if err != nil {
		return VoteList{}, fmt.Errorf("get votes: %w", err)
	}

	return list, nil
}
