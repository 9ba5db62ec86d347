package discussion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/novalend/governance-storage/internal/events"
	"github.com/novalend/governance-storage/internal/proposal"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrParentNotFound   = errors.New("parent comment not found")
	ErrEmptyMessage     = errors.New("empty message")
)

type DataProvider interface {
	Create(*Discussion) error
	GetByID(uuid.UUID) (*Discussion, error)
	GetByProposal(uuid.UUID) ([]Discussion, error)
}

type ProposalProvider interface {
	GetByID(id uuid.UUID) (*proposal.Proposal, error)
}

type Publisher interface {
	PublishDiscussion(ev events.DiscussionEvent) error
}

type Service struct {
	repo      DataProvider
	proposals ProposalProvider
	pub       Publisher
}

func NewService(repo DataProvider, proposals ProposalProvider, pub Publisher) *Service {
	return &Service{
		repo:      repo,
		proposals: proposals,
		pub:       pub,
	}
}

type CreateRequest struct {
	ProposalID  uuid.UUID
	UserAddress string
	UserName    *string
	Message     string
	ParentID    *uuid.UUID
}

func (s *Service) Create(_ context.Context, req CreateRequest) (*Discussion, error) {
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.proposals.GetByID(req.ProposalID); err != nil {
		if errors.Is(err, proposal.ErrNotFound) {
			return nil, ErrProposalNotFound
		}

		return nil, fmt.Errorf("get proposal: %w", err)
	}

	if req.ParentID != nil {
		parent, err := s.repo.GetByID(*req.ParentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}

		if err != nil {
			return nil, fmt.Errorf("get parent: %w", err)
		}

		// threads cannot cross proposals
		if parent.ProposalID != req.ProposalID {
			return nil, ErrParentNotFound
		}
	}

	now := time.Now()
	d := Discussion{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		ProposalID:  req.ProposalID,
		UserAddress: req.UserAddress,
		UserName:    req.UserName,
		Message:     req.Message,
		ParentID:    req.ParentID,
	}

	if err := s.repo.Create(&d); err != nil {
		return nil, fmt.Errorf("create discussion: %w", err)
	}

	if err := s.pub.PublishDiscussion(events.DiscussionEvent{
		DiscussionID: d.ID,
		ProposalID:   d.ProposalID,
		UserAddress:  d.UserAddress,
		ParentID:     d.ParentID,
	}); err != nil {
		log.Warn().Err(err).Str("discussion", d.ID.String()).Msg("publish discussion")
	}

	return &d, nil
}

func (s *Service) GetByProposal(proposalID uuid.UUID) ([]Discussion, error) {
	list, err := s.repo.GetByProposal(proposalID)
	if err != nil {
		return nil, fmt.Errorf("get discussions: %w", err)
	}

	return list, nil
}
