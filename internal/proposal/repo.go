package proposal

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(p *Proposal) error {
	return r.db.Create(&p).Error
}

func (r *Repo) GetByID(id uuid.UUID) (*Proposal, error) {
	p := Proposal{ID: id}
	if err := r.db.Take(&p).Error; err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *Repo) GetByFilters(filters []Filter) (ProposalList, error) {
	db := r.db.Model(&Proposal{})
	for _, f := range filters {
		if _, ok := f.(PageFilter); ok {
			continue
		}
		db = f.Apply(db)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return ProposalList{}, err
	}

	for _, f := range filters {
		if _, ok := f.(PageFilter); ok {
			db = f.Apply(db)
		}
	}

	var list []Proposal
	if err := db.Find(&list).Error; err != nil {
		return ProposalList{}, err
	}

	return ProposalList{
		Proposals:  list,
		TotalCount: count,
	}, nil
}

// GetDueForActivation returns pending proposals whose voting window has opened
func (r *Repo) GetDueForActivation(now time.Time) ([]Proposal, error) {
	var list []Proposal

	err := r.db.
		Where("status = @status and start_date <= @date",
			sql.Named("status", StatusPending),
			sql.Named("date", now),
		).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// GetDueForResolution returns active proposals whose voting window has closed
func (r *Repo) GetDueForResolution(now time.Time) ([]Proposal, error) {
	var list []Proposal

	err := r.db.
		Where("status = @status and end_date <= @date",
			sql.Named("status", StatusActive),
			sql.Named("date", now),
		).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// GetNearingDeadline returns active proposals ending inside the window that
// have not been reminded about yet
func (r *Repo) GetNearingDeadline(now time.Time, window time.Duration) ([]Proposal, error) {
	var list []Proposal

	err := r.db.
		Where("status = @status and deadline_notified = false and end_date > @from and end_date <= @to",
			sql.Named("status", StatusActive),
			sql.Named("from", now),
			sql.Named("to", now.Add(window)),
		).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// TransitionStatus moves a proposal from one status to another. The guard on
// the current status makes concurrent sweeps idempotent: only one transition
// wins, the rest report no rows affected.
func (r *Repo) TransitionStatus(id uuid.UUID, from, to Status, changes map[string]any) (bool, error) {
	if changes == nil {
		changes = map[string]any{}
	}
	changes["status"] = to
	changes["updated_at"] = time.Now()

	tx := r.db.
		Model(&Proposal{}).
		Where("id = ? and status = ?", id, from).
		Updates(changes)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

// Resolve finalizes an active proposal. The terminal status is computed from
// the committed tally inside the guarded update, so a ballot landing after
// the sweep's read cannot flip the result.
func (r *Repo) Resolve(id uuid.UUID) (bool, error) {
	tx := r.db.
		Model(&Proposal{}).
		Where("id = ? and status = ?", id, StatusActive).
		Updates(map[string]any{
			"status": gorm.Expr(
				"case when total_votes >= quorum and votes_for > votes_against then ? else ? end",
				StatusPassed, StatusRejected,
			),
			"updated_at": time.Now(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *Repo) MarkDeadlineNotified(id uuid.UUID) (bool, error) {
	tx := r.db.
		Model(&Proposal{}).
		Where("id = ? and deadline_notified = false", id).
		Update("deadline_notified", true)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *Repo) CreateDocument(doc *Document) error {
	return r.db.Create(&doc).Error
}

func (r *Repo) GetDocuments(proposalID uuid.UUID) ([]Document, error) {
	var list []Document

	err := r.db.
		Where(&Document{ProposalID: proposalID}).
		Order("created_at asc").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// GetCurrentAIRequestsCount returns the number of summary requests by address since start of month
func (r *Repo) GetCurrentAIRequestsCount(address string) (int64, error) {
	var count int64

	err := r.db.
		Model(&AIRequest{}).
		Where("address = @address and created_at >= @start_of_month",
			sql.Named("address", address),
			sql.Named("start_of_month", beginningOfMonth(time.Now())),
		).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func beginningOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// AISummaryRequested returns if the address already requested this proposal
func (r *Repo) AISummaryRequested(address string, proposalID uuid.UUID) (bool, error) {
	var req AIRequest
	err := r.db.
		Where("address = @address and proposal_id = @proposal_id",
			sql.Named("address", address),
			sql.Named("proposal_id", proposalID),
		).
		First(&req).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	return true, nil
}

func (r *Repo) CreateAIRequest(req *AIRequest) error {
	return r.db.Create(&req).Error
}

func (r *Repo) CreateAISummary(sum *AISummary) error {
	return r.db.Create(&sum).Error
}

func (r *Repo) GetSummary(proposalID uuid.UUID) (string, error) {
	var info AISummary
	err := r.db.
		Where("proposal_id = @proposal_id",
			sql.Named("proposal_id", proposalID),
		).
		First(&info).
		Error
	if err != nil {
		return "", err
	}

	return info.Summary, nil
}
