package proposal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/novalend/governance-storage/internal/events"
)

type fakeRepo struct {
	mu        sync.Mutex
	proposals map[uuid.UUID]*Proposal
	documents map[uuid.UUID][]Document

	transitions []string
}

func newFakeRepo(proposals ...*Proposal) *fakeRepo {
	r := &fakeRepo{
		proposals: make(map[uuid.UUID]*Proposal),
		documents: make(map[uuid.UUID][]Document),
	}
	for _, p := range proposals {
		r.proposals[p.ID] = p
	}

	return r
}

func (r *fakeRepo) Create(p *Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proposals[p.ID] = p

	return nil
}

func (r *fakeRepo) GetByID(id uuid.UUID) (*Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	clone := *p
	return &clone, nil
}

func (r *fakeRepo) GetByFilters(_ []Filter) (ProposalList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]Proposal, 0, len(r.proposals))
	for _, p := range r.proposals {
		list = append(list, *p)
	}

	return ProposalList{Proposals: list, TotalCount: int64(len(list))}, nil
}

func (r *fakeRepo) GetDueForActivation(now time.Time) ([]Proposal, error) {
	return r.byStatus(StatusPending, func(p Proposal) bool { return !p.StartDate.After(now) }), nil
}

func (r *fakeRepo) GetDueForResolution(now time.Time) ([]Proposal, error) {
	return r.byStatus(StatusActive, func(p Proposal) bool { return !p.EndDate.After(now) }), nil
}

func (r *fakeRepo) GetNearingDeadline(now time.Time, window time.Duration) ([]Proposal, error) {
	return r.byStatus(StatusActive, func(p Proposal) bool {
		return !p.DeadlineNotified && p.EndDate.After(now) && !p.EndDate.After(now.Add(window))
	}), nil
}

func (r *fakeRepo) byStatus(status Status, match func(Proposal) bool) []Proposal {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []Proposal
	for _, p := range r.proposals {
		if p.Status == status && match(*p) {
			res = append(res, *p)
		}
	}

	return res
}

func (r *fakeRepo) TransitionStatus(id uuid.UUID, from, to Status, changes map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok || p.Status != from {
		return false, nil
	}

	p.Status = to
	if raw, ok := changes["execution_date"]; ok {
		date := raw.(time.Time)
		p.ExecutionDate = &date
	}

	r.transitions = append(r.transitions, string(from)+"->"+string(to))

	return true, nil
}

func (r *fakeRepo) Resolve(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok || p.Status != StatusActive {
		return false, nil
	}

	p.Status = p.Outcome()
	r.transitions = append(r.transitions, string(StatusActive)+"->"+string(p.Status))

	return true, nil
}

func (r *fakeRepo) MarkDeadlineNotified(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok || p.DeadlineNotified {
		return false, nil
	}

	p.DeadlineNotified = true

	return true, nil
}

func (r *fakeRepo) CreateDocument(doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[doc.ProposalID] = append(r.documents[doc.ProposalID], *doc)

	return nil
}

func (r *fakeRepo) GetDocuments(id uuid.UUID) ([]Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.documents[id], nil
}

func (r *fakeRepo) GetCurrentAIRequestsCount(string) (int64, error) { return 0, nil }

func (r *fakeRepo) AISummaryRequested(string, uuid.UUID) (bool, error) { return false, nil }

func (r *fakeRepo) CreateAIRequest(*AIRequest) error { return nil }

func (r *fakeRepo) CreateAISummary(*AISummary) error { return nil }

func (r *fakeRepo) GetSummary(uuid.UUID) (string, error) { return "", gorm.ErrRecordNotFound }

type fakePower struct {
	power map[string]int64
}

func (f *fakePower) VotingPower(_ context.Context, address string) (int64, error) {
	return f.power[address], nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	created  []Proposal
	deadline []Proposal
	resolved []Proposal
	executed []Proposal
}

func (f *fakeNotifier) ProposalCreated(p Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)

	return nil
}

func (f *fakeNotifier) DeadlineApproaching(p Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadline = append(f.deadline, p)

	return nil
}

func (f *fakeNotifier) ProposalResolved(p Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, p)

	return nil
}

func (f *fakeNotifier) ProposalExecuted(p Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, p)

	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.ProposalEvent
}

func (f *fakePublisher) PublishProposal(ev events.ProposalEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)

	return nil
}

func newTestService(repo *fakeRepo, power map[string]int64, notifier *fakeNotifier) *Service {
	return NewService(repo, &fakePower{power: power}, notifier, &fakePublisher{}, 1000, nil, 10)
}

func TestUnitCreateProposal(t *testing.T) {
	now := time.Now()

	valid := CreateRequest{
		Title:       "Adjust reserve factor",
		Description: "Raise the reserve factor on volatile assets",
		Category:    CategoryRisk,
		Proposer:    "0xwhale",
		Quorum:      100000,
		StartDate:   now.Add(-time.Minute),
		EndDate:     now.Add(72 * time.Hour),
	}

	t.Run("created active when window already open", func(t *testing.T) {
		repo := newFakeRepo()
		notifier := &fakeNotifier{}
		service := newTestService(repo, map[string]int64{"0xwhale": 5000}, notifier)

		p, err := service.Create(context.Background(), valid)
		require.NoError(t, err)
		require.Equal(t, StatusActive, p.Status)
		require.Len(t, notifier.created, 1)
	})

	t.Run("created pending when start in future", func(t *testing.T) {
		repo := newFakeRepo()
		service := newTestService(repo, map[string]int64{"0xwhale": 5000}, &fakeNotifier{})

		req := valid
		req.StartDate = now.Add(time.Hour)

		p, err := service.Create(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, StatusPending, p.Status)
	})

	t.Run("insufficient staked power", func(t *testing.T) {
		repo := newFakeRepo()
		service := newTestService(repo, map[string]int64{"0xwhale": 999}, &fakeNotifier{})

		_, err := service.Create(context.Background(), valid)
		require.ErrorIs(t, err, ErrInsufficientPower)
		require.Empty(t, repo.proposals)
	})

	for name, mutate := range map[string]func(*CreateRequest){
		"empty title":      func(r *CreateRequest) { r.Title = "" },
		"unknown category": func(r *CreateRequest) { r.Category = "marketing" },
		"empty proposer":   func(r *CreateRequest) { r.Proposer = "" },
		"zero quorum":      func(r *CreateRequest) { r.Quorum = 0 },
		"end before start": func(r *CreateRequest) { r.EndDate = r.StartDate.Add(-time.Hour) },
	} {
		t.Run(name, func(t *testing.T) {
			service := newTestService(newFakeRepo(), map[string]int64{"0xwhale": 5000}, &fakeNotifier{})

			req := valid
			mutate(&req)

			_, err := service.Create(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUnitActivateDue(t *testing.T) {
	now := time.Now()

	due := &Proposal{
		ID:        uuid.New(),
		Status:    StatusPending,
		StartDate: now.Add(-time.Minute),
		EndDate:   now.Add(time.Hour),
	}
	notYet := &Proposal{
		ID:        uuid.New(),
		Status:    StatusPending,
		StartDate: now.Add(time.Hour),
		EndDate:   now.Add(2 * time.Hour),
	}

	repo := newFakeRepo(due, notYet)
	service := newTestService(repo, nil, &fakeNotifier{})

	require.NoError(t, service.ActivateDue(context.Background(), now))
	require.Equal(t, StatusActive, repo.proposals[due.ID].Status)
	require.Equal(t, StatusPending, repo.proposals[notYet.ID].Status)
}

func TestUnitResolveDue(t *testing.T) {
	now := time.Now()

	passing := &Proposal{
		ID:           uuid.New(),
		Title:        "Raise supply cap",
		Status:       StatusActive,
		VotesFor:     125000,
		VotesAgainst: 45000,
		TotalVotes:   170000,
		Quorum:       100000,
		StartDate:    now.Add(-72 * time.Hour),
		EndDate:      now.Add(-time.Minute),
	}
	belowQuorum := &Proposal{
		ID:           uuid.New(),
		Title:        "Lower borrow rate",
		Status:       StatusActive,
		VotesFor:     45000,
		VotesAgainst: 12000,
		TotalVotes:   57000,
		Quorum:       100000,
		StartDate:    now.Add(-72 * time.Hour),
		EndDate:      now.Add(-time.Minute),
	}
	stillRunning := &Proposal{
		ID:        uuid.New(),
		Status:    StatusActive,
		Quorum:    100000,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	}

	repo := newFakeRepo(passing, belowQuorum, stillRunning)
	notifier := &fakeNotifier{}
	service := newTestService(repo, nil, notifier)

	require.NoError(t, service.ResolveDue(context.Background(), now))

	require.Equal(t, StatusPassed, repo.proposals[passing.ID].Status)
	require.Equal(t, StatusRejected, repo.proposals[belowQuorum.ID].Status)
	require.Equal(t, StatusActive, repo.proposals[stillRunning.ID].Status)
	require.Len(t, notifier.resolved, 2)

	// a second sweep is a no-op: no new transitions, no re-fired notifications
	require.NoError(t, service.ResolveDue(context.Background(), now))
	require.Len(t, notifier.resolved, 2)
	require.Len(t, repo.transitions, 2)
}

// staleSweepRepo hands the sweep a read taken before any recent ballots
// landed, the way a real sweep races late casts.
type staleSweepRepo struct {
	*fakeRepo
}

func (r *staleSweepRepo) GetDueForResolution(now time.Time) ([]Proposal, error) {
	list, err := r.fakeRepo.GetDueForResolution(now)
	for i := range list {
		list[i].VotesFor = 0
		list[i].TotalVotes = 0
	}

	return list, err
}

func TestUnitResolveDueUsesCommittedTally(t *testing.T) {
	now := time.Now()

	p := &Proposal{
		ID:           uuid.New(),
		Title:        "Enable flash loan module",
		Status:       StatusActive,
		VotesFor:     125000,
		VotesAgainst: 45000,
		TotalVotes:   170000,
		Quorum:       100000,
		StartDate:    now.Add(-72 * time.Hour),
		EndDate:      now.Add(-time.Minute),
	}

	repo := newFakeRepo(p)
	notifier := &fakeNotifier{}
	service := NewService(&staleSweepRepo{fakeRepo: repo}, &fakePower{}, notifier, &fakePublisher{}, 1000, nil, 10)

	require.NoError(t, service.ResolveDue(context.Background(), now))

	// the sweep read a below-quorum snapshot; the committed tally decides
	require.Equal(t, StatusPassed, repo.proposals[p.ID].Status)
	require.Len(t, notifier.resolved, 1)
	require.Equal(t, StatusPassed, notifier.resolved[0].Status)
}

func TestUnitNotifyDeadlines(t *testing.T) {
	now := time.Now()

	endingSoon := &Proposal{
		ID:        uuid.New(),
		Status:    StatusActive,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(12 * time.Hour),
	}
	endingLater := &Proposal{
		ID:        uuid.New(),
		Status:    StatusActive,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(72 * time.Hour),
	}

	repo := newFakeRepo(endingSoon, endingLater)
	notifier := &fakeNotifier{}
	service := newTestService(repo, nil, notifier)

	require.NoError(t, service.NotifyDeadlines(context.Background(), now, 24*time.Hour))
	require.Len(t, notifier.deadline, 1)
	require.Equal(t, endingSoon.ID, notifier.deadline[0].ID)

	// the reminder fires once per proposal
	require.NoError(t, service.NotifyDeadlines(context.Background(), now, 24*time.Hour))
	require.Len(t, notifier.deadline, 1)
}

func TestUnitExecute(t *testing.T) {
	now := time.Now()

	passed := &Proposal{
		ID:     uuid.New(),
		Title:  "Treasury diversification",
		Status: StatusPassed,
	}
	active := &Proposal{
		ID:     uuid.New(),
		Status: StatusActive,
	}

	repo := newFakeRepo(passed, active)
	notifier := &fakeNotifier{}
	service := newTestService(repo, nil, notifier)

	t.Run("passed proposal executes", func(t *testing.T) {
		p, err := service.Execute(context.Background(), passed.ID, now)
		require.NoError(t, err)
		require.Equal(t, StatusExecuted, p.Status)
		require.NotNil(t, p.ExecutionDate)
		require.Len(t, notifier.executed, 1)
	})

	t.Run("executing twice fails", func(t *testing.T) {
		_, err := service.Execute(context.Background(), passed.ID, now)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("active proposal is not executable", func(t *testing.T) {
		_, err := service.Execute(context.Background(), active.ID, now)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown proposal", func(t *testing.T) {
		_, err := service.Execute(context.Background(), uuid.New(), now)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUnitAttachDocument(t *testing.T) {
	p := &Proposal{ID: uuid.New(), Status: StatusActive}
	repo := newFakeRepo(p)
	service := newTestService(repo, nil, &fakeNotifier{})

	doc, err := service.AttachDocument(AttachDocumentRequest{
		ProposalID: p.ID,
		Name:       "risk-analysis.pdf",
		URL:        "https://example.com/risk-analysis.pdf",
		FileType:   "application/pdf",
		UploadedBy: "0xwhale",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, doc.ID)

	docs, err := service.GetDocuments(p.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = service.AttachDocument(AttachDocumentRequest{
		ProposalID: uuid.New(),
		Name:       "x",
		URL:        "y",
	})
	require.ErrorIs(t, err, ErrNotFound)
}
