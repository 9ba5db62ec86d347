package proposal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/novalend/governance-storage/internal/events"
)

var (
	ErrNotFound          = errors.New("proposal not found")
	ErrInvalidInput      = errors.New("invalid proposal input")
	ErrInsufficientPower = errors.New("insufficient voting power")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrLimitExceeded     = errors.New("request limit exceeded")
)

type DataProvider interface {
	Create(*Proposal) error
	GetByID(uuid.UUID) (*Proposal, error)
	GetByFilters([]Filter) (ProposalList, error)
	GetDueForActivation(time.Time) ([]Proposal, error)
	GetDueForResolution(time.Time) ([]Proposal, error)
	GetNearingDeadline(time.Time, time.Duration) ([]Proposal, error)
	TransitionStatus(uuid.UUID, Status, Status, map[string]any) (bool, error)
	Resolve(uuid.UUID) (bool, error)
	MarkDeadlineNotified(uuid.UUID) (bool, error)
	CreateDocument(*Document) error
	GetDocuments(uuid.UUID) ([]Document, error)
	GetCurrentAIRequestsCount(string) (int64, error)
	AISummaryRequested(string, uuid.UUID) (bool, error)
	CreateAIRequest(*AIRequest) error
	CreateAISummary(*AISummary) error
	GetSummary(uuid.UUID) (string, error)
}

type PowerProvider interface {
	VotingPower(ctx context.Context, address string) (int64, error)
}

// Notifier fans user-facing notifications out for proposal events.
type Notifier interface {
	ProposalCreated(p Proposal) error
	DeadlineApproaching(p Proposal) error
	ProposalResolved(p Proposal) error
	ProposalExecuted(p Proposal) error
}

type Publisher interface {
	PublishProposal(ev events.ProposalEvent) error
}

type Service struct {
	repo     DataProvider
	power    PowerProvider
	notifier Notifier
	pub      Publisher

	minProposerPower int64
	aiLimit          int64
	ai               *AIClient
}

func NewService(
	repo DataProvider,
	power PowerProvider,
	notifier Notifier,
	pub Publisher,
	minProposerPower int64,
	ai *AIClient,
	aiLimit int64,
) *Service {
	return &Service{
		repo:             repo,
		power:            power,
		notifier:         notifier,
		pub:              pub,
		minProposerPower: minProposerPower,
		ai:               ai,
		aiLimit:          aiLimit,
	}
}

type CreateRequest struct {
	Title       string
	Description string
	Category    Category
	Proposer    string
	Quorum      int64
	StartDate   time.Time
	EndDate     time.Time
	IpfsHash    *string
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Proposal, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	power, err := s.power.VotingPower(ctx, req.Proposer)
	if err != nil {
		return nil, fmt.Errorf("get voting power: %w", err)
	}

	if power < s.minProposerPower {
		return nil, ErrInsufficientPower
	}

	now := time.Now()
	status := StatusActive
	if req.StartDate.After(now) {
		status = StatusPending
	}

	p := Proposal{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Proposer:    req.Proposer,
		Status:      status,
		Quorum:      req.Quorum,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IpfsHash:    req.IpfsHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(&p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	// fan-out only happens after the row is committed
	if err := s.pub.PublishProposal(events.ProposalEvent{
		Action:     events.ProposalCreated,
		ProposalID: p.ID,
		Status:     string(p.Status),
	}); err != nil {
		log.Warn().Err(err).Str("proposal", p.ID.String()).Msg("publish proposal created")
	}

	if err := s.notifier.ProposalCreated(p); err != nil {
		log.Warn().Err(err).Str("proposal", p.ID.String()).Msg("notify proposal created")
	}

	return &p, nil
}

func validateCreateRequest(req CreateRequest) error {
	if req.Title == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidInput)
	}

	if !req.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Category)
	}

	if req.Proposer == "" {
		return fmt.Errorf("%w: empty proposer", ErrInvalidInput)
	}

	if req.Quorum <= 0 {
		return fmt.Errorf("%w: quorum must be positive", ErrInvalidInput)
	}

	if !req.EndDate.After(req.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidInput)
	}

	return nil
}

func (s *Service) GetByID(id uuid.UUID) (*Proposal, error) {
	p, err := s.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	return p, nil
}

func (s *Service) GetByFilters(filters []Filter) (ProposalList, error) {
	list, err := s.repo.GetByFilters(filters)
	if err != nil {
		return ProposalList{}, fmt.Errorf("get by filters: %w", err)
	}

	return list, nil
}

// ActivateDue opens the voting window on pending proposals whose start date
// has been reached.
func (s *Service) ActivateDue(_ context.Context, now time.Time) error {
	due, err := s.repo.GetDueForActivation(now)
	if err != nil {
		return fmt.Errorf("get due for activation: %w", err)
	}

	for _, p := range due {
		ok, err := s.repo.TransitionStatus(p.ID, StatusPending, StatusActive, nil)
		if err != nil {
			log.Error().Err(err).Str("proposal", p.ID.String()).Msg("activate proposal")
			continue
		}

		if !ok {
			continue
		}

		s.publishStatusChange(p.ID, StatusActive)
	}

	return nil
}

// ResolveDue finalizes active proposals whose voting window has closed.
// Re-running the sweep on an already resolved proposal is a no-op: the
// guarded transition refuses to fire twice, so notifications cannot re-fire
// either. The outcome itself is decided by the store from the committed
// tally, not from this sweep's read.
func (s *Service) ResolveDue(_ context.Context, now time.Time) error {
	due, err := s.repo.GetDueForResolution(now)
	if err != nil {
		return fmt.Errorf("get due for resolution: %w", err)
	}

	for _, p := range due {
		ok, err := s.repo.Resolve(p.ID)
		if err != nil {
			log.Error().Err(err).Str("proposal", p.ID.String()).Msg("resolve proposal")
			continue
		}

		if !ok {
			continue
		}

		resolved, err := s.repo.GetByID(p.ID)
		if err != nil {
			log.Error().Err(err).Str("proposal", p.ID.String()).Msg("load resolved proposal")
			continue
		}

		log.Info().
			Str("proposal", resolved.ID.String()).
			Str("outcome", string(resolved.Status)).
			Int64("total_votes", resolved.TotalVotes).
			Int64("quorum", resolved.Quorum).
			Msg("proposal resolved")

		s.publishStatusChange(resolved.ID, resolved.Status)

		if err := s.notifier.ProposalResolved(*resolved); err != nil {
			log.Warn().Err(err).Str("proposal", resolved.ID.String()).Msg("notify proposal resolved")
		}
	}

	return nil
}

// NotifyDeadlines reminds participants about proposals ending soon, once per
// proposal.
func (s *Service) NotifyDeadlines(_ context.Context, now time.Time, window time.Duration) error {
	nearing, err := s.repo.GetNearingDeadline(now, window)
	if err != nil {
		return fmt.Errorf("get nearing deadline: %w", err)
	}

	for _, p := range nearing {
		ok, err := s.repo.MarkDeadlineNotified(p.ID)
		if err != nil {
			log.Error().Err(err).Str("proposal", p.ID.String()).Msg("mark deadline notified")
			continue
		}

		if !ok {
			continue
		}

		if err := s.notifier.DeadlineApproaching(p); err != nil {
			log.Warn().Err(err).Str("proposal", p.ID.String()).Msg("notify deadline")
		}
	}

	return nil
}

// Execute marks a passed proposal as executed, e.g. after on-chain settlement.
func (s *Service) Execute(_ context.Context, id uuid.UUID, now time.Time) (*Proposal, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if p.Status != StatusPassed {
		return nil, fmt.Errorf("%w: %s is not executable", ErrInvalidTransition, p.Status)
	}

	ok, err := s.repo.TransitionStatus(id, StatusPassed, StatusExecuted, map[string]any{
		"execution_date": now,
	})
	if err != nil {
		return nil, fmt.Errorf("execute proposal: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: proposal already transitioned", ErrInvalidTransition)
	}

	s.publishStatusChange(id, StatusExecuted)

	p.Status = StatusExecuted
	p.ExecutionDate = &now
	if err := s.notifier.ProposalExecuted(*p); err != nil {
		log.Warn().Err(err).Str("proposal", id.String()).Msg("notify proposal executed")
	}

	return p, nil
}

func (s *Service) publishStatusChange(id uuid.UUID, status Status) {
	if err := s.pub.PublishProposal(events.ProposalEvent{
		Action:     events.ProposalStatusChanged,
		ProposalID: id,
		Status:     string(status),
	}); err != nil {
		log.Warn().Err(err).Str("proposal", id.String()).Msg("publish status change")
	}
}

type AttachDocumentRequest struct {
	ProposalID uuid.UUID
	Name       string
	URL        string
	FileType   string
	SizeBytes  *int64
	UploadedBy string
}

func (s *Service) AttachDocument(req AttachDocumentRequest) (*Document, error) {
	if req.Name == "" || req.URL == "" {
		return nil, fmt.Errorf("%w: document name and url are required", ErrInvalidInput)
	}

	if _, err := s.GetByID(req.ProposalID); err != nil {
		return nil, err
	}

	doc := Document{
		ID:         uuid.New(),
		ProposalID: req.ProposalID,
		Name:       req.Name,
		URL:        req.URL,
		FileType:   req.FileType,
		SizeBytes:  req.SizeBytes,
		UploadedBy: req.UploadedBy,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateDocument(&doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return &doc, nil
}

func (s *Service) GetDocuments(proposalID uuid.UUID) ([]Document, error) {
	if _, err := s.GetByID(proposalID); err != nil {
		return nil, err
	}

	docs, err := s.repo.GetDocuments(proposalID)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}

	return docs, nil
}

// GetAISummary returns the proposal digest based on internal restrictions
func (s *Service) GetAISummary(ctx context.Context, address string, proposalID uuid.UUID) (string, error) {
	if s.ai == nil {
		return "", fmt.Errorf("%w: summaries are disabled", ErrInvalidInput)
	}

	p, err := s.GetByID(proposalID)
	if err != nil {
		return "", err
	}

	requested, err := s.repo.AISummaryRequested(address, proposalID)
	if err != nil {
		return "", fmt.Errorf("get requested summary: %w", err)
	}

	cnt, err := s.repo.GetCurrentAIRequestsCount(address)
	if err != nil {
		return "", fmt.Errorf("get current requests count: %w", err)
	}

	if !requested && cnt >= s.aiLimit {
		return "", ErrLimitExceeded
	}

	summary, err := s.getAISummary(ctx, p)
	if err != nil {
		return "", fmt.Errorf("get summary: %w", err)
	}

	if requested {
		return summary, nil
	}

	err = s.repo.CreateAIRequest(&AIRequest{
		CreatedAt:  time.Now(),
		Address:    address,
		ProposalID: proposalID,
	})
	if err != nil {
		log.Err(err).Msg("create summary request row")
	}

	return summary, nil
}

func (s *Service) getAISummary(ctx context.Context, p *Proposal) (string, error) {
	sum, err := s.repo.GetSummary(p.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("get summary from DB: %w", err)
	}

	if err == nil {
		return sum, nil
	}

	summary, err := s.ai.GetSummaryByDescription(ctx, p.Description)
	if err != nil {
		return "", fmt.Errorf("get summary from provider: %w", err)
	}

	if err := s.repo.CreateAISummary(&AISummary{
		ProposalID: p.ID,
		CreatedAt:  time.Now(),
		Summary:    summary,
	}); err != nil {
		return "", fmt.Errorf("create summary: %w", err)
	}

	return summary, nil
}
