package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/novalend/governance-storage/internal/events"
	"github.com/novalend/governance-storage/internal/proposal"
)

var ErrNotFound = errors.New("notification not found")

type DataProvider interface {
	Create(*Notification) error
	CreateBatch([]Notification) error
	GetByID(uuid.UUID) (*Notification, error)
	GetByAddress(address string, limit int) ([]Notification, error)
	UnreadCount(address string) (int64, error)
	MarkRead(id uuid.UUID) error
	MarkAllRead(address string) error
}

// VoterSource resolves voter addresses; uuid.Nil scopes to all proposals
type VoterSource interface {
	GetParticipants(proposalID uuid.UUID) ([]string, error)
}

type CommenterSource interface {
	GetParticipants() ([]string, error)
}

type Publisher interface {
	PublishNotification(ev events.NotificationEvent) error
}

// Service synthesizes per-user notification rows for proposal lifecycle
// events and pushes them to the recipients' open sessions through the
// realtime channel.
type Service struct {
	repo       DataProvider
	voters     VoterSource
	commenters CommenterSource
	pub        Publisher
}

func NewService(repo DataProvider, voters VoterSource, commenters CommenterSource, pub Publisher) *Service {
	return &Service{
		repo:       repo,
		voters:     voters,
		commenters: commenters,
		pub:        pub,
	}
}

func (s *Service) ProposalCreated(p proposal.Proposal) error {
	recipients, err := s.allParticipants(p.Proposer)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}

	return s.dispatch(recipients, TypeNewProposal,
		"New proposal",
		fmt.Sprintf("%q is open for voting", p.Title),
		&p.ID,
	)
}

func (s *Service) DeadlineApproaching(p proposal.Proposal) error {
	recipients, err := s.proposalParticipants(p)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}

	return s.dispatch(recipients, TypeVotingDeadline,
		"Voting ends soon",
		fmt.Sprintf("Voting on %q closes at %s", p.Title, p.EndDate.UTC().Format(time.RFC1123)),
		&p.ID,
	)
}

func (s *Service) ProposalResolved(p proposal.Proposal) error {
	recipients, err := s.proposalParticipants(p)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}

	ntype := TypeProposalRejected
	title := "Proposal rejected"
	message := fmt.Sprintf("%q did not pass", p.Title)
	if p.Status == proposal.StatusPassed {
		ntype = TypeProposalPassed
		title = "Proposal passed"
		message = fmt.Sprintf("%q reached quorum and passed", p.Title)
	}

	return s.dispatch(recipients, ntype, title, message, &p.ID)
}

func (s *Service) ProposalExecuted(p proposal.Proposal) error {
	return s.dispatch([]string{p.Proposer}, TypeProposalExecuted,
		"Proposal executed",
		fmt.Sprintf("%q has been executed", p.Title),
		&p.ID,
	)
}

// allParticipants returns every address known to the store, voters and
// commenters alike, minus the excluded one. There is no account table in
// this system; participation is the only user registry.
func (s *Service) allParticipants(exclude string) ([]string, error) {
	votersList, err := s.voters.GetParticipants(uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("get voters: %w", err)
	}

	commentersList, err := s.commenters.GetParticipants()
	if err != nil {
		return nil, fmt.Errorf("get commenters: %w", err)
	}

	return dedupe(append(votersList, commentersList...), exclude), nil
}

// proposalParticipants returns the proposal's voters plus the proposer
func (s *Service) proposalParticipants(p proposal.Proposal) ([]string, error) {
	votersList, err := s.voters.GetParticipants(p.ID)
	if err != nil {
		return nil, fmt.Errorf("get voters: %w", err)
	}

	return dedupe(append(votersList, p.Proposer), ""), nil
}

func dedupe(list []string, exclude string) []string {
	seen := make(map[string]struct{}, len(list))
	res := make([]string, 0, len(list))
	for _, addr := range list {
		if addr == "" || addr == exclude {
			continue
		}

		if _, ok := seen[addr]; ok {
			continue
		}

		seen[addr] = struct{}{}
		res = append(res, addr)
	}

	return res
}

func (s *Service) dispatch(recipients []string, ntype Type, title, message string, proposalID *uuid.UUID) error {
	if len(recipients) == 0 {
		return nil
	}

	now := time.Now()
	list := make([]Notification, 0, len(recipients))
	for _, addr := range recipients {
		list = append(list, Notification{
			ID:          uuid.New(),
			CreatedAt:   now,
			UserAddress: addr,
			Type:        ntype,
			Title:       title,
			Message:     message,
			ProposalID:  proposalID,
		})
	}

	if err := s.repo.CreateBatch(list); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}

	for _, n := range list {
		if err := s.pub.PublishNotification(events.NotificationEvent{
			NotificationID: n.ID,
			UserAddress:    n.UserAddress,
			Type:           string(n.Type),
			Title:          n.Title,
			Message:        n.Message,
			ProposalID:     n.ProposalID,
		}); err != nil {
			log.Warn().Err(err).Str("notification", n.ID.String()).Msg("publish notification")
		}
	}

	log.Info().
		Str("type", string(ntype)).
		Int("recipients", len(list)).
		Msg("notifications dispatched")

	return nil
}

func (s *Service) GetByAddress(address string) (Inbox, error) {
	list, err := s.repo.GetByAddress(address, recentWindow)
	if err != nil {
		return Inbox{}, fmt.Errorf("get notifications: %w", err)
	}

	unread, err := s.repo.UnreadCount(address)
	if err != nil {
		return Inbox{}, fmt.Errorf("get unread count: %w", err)
	}

	return Inbox{
		Notifications: list,
		UnreadCount:   unread,
	}, nil
}

// MarkRead is idempotent: marking an already read notification changes nothing
func (s *Service) MarkRead(id uuid.UUID) error {
	_, err := s.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("get notification: %w", err)
	}

	if err := s.repo.MarkRead(id); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	return nil
}

func (s *Service) MarkAllRead(address string) error {
	if err := s.repo.MarkAllRead(address); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}

	return nil
}
