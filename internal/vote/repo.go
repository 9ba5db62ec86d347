package vote

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novalend/governance-storage/internal/proposal"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CreateWithTally inserts the vote and moves the owning proposal's tally in
// one transaction. Either both commit or neither does: a duplicate vote rolls
// the whole unit back and the tally stays untouched. The tally update is
// guarded on active status, so a cast that raced a resolution sweep rolls
// back instead of mutating a terminal tally.
func (r *Repo) CreateWithTally(v *Vote) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}

		var forDelta, againstDelta int64
		if v.Support {
			forDelta = v.VotingPower
		} else {
			againstDelta = v.VotingPower
		}

		res := tx.
			Model(&proposal.Proposal{}).
			Where("id = ? and status = ?", v.ProposalID, proposal.StatusActive).
			Updates(map[string]any{
				"votes_for":     gorm.Expr("votes_for + ?", forDelta),
				"votes_against": gorm.Expr("votes_against + ?", againstDelta),
				"total_votes":   gorm.Expr("total_votes + ?", v.VotingPower),
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var count int64
			err := tx.
				Model(&proposal.Proposal{}).
				Where("id = ?", v.ProposalID).
				Count(&count).
				Error
			if err != nil {
				return err
			}

			if count == 0 {
				return gorm.ErrRecordNotFound
			}

			// the proposal left the active state after the window check
			return ErrProposalNotActive
		}

		return nil
	})
}

func (r *Repo) GetByProposal(proposalID uuid.UUID, limit, offset int) (VoteList, error) {
	db := r.db.
		Model(&Vote{}).
		Where(&Vote{ProposalID: proposalID})

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return VoteList{}, err
	}

	var list []Vote
	err := db.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&list).
		Error
	if err != nil {
		return VoteList{}, err
	}

	return VoteList{
		Votes:      list,
		TotalCount: count,
	}, nil
}

func (r *Repo) GetByProposalAndVoter(proposalID uuid.UUID, voter string) (*Vote, error) {
	var v Vote
	err := r.db.
		Where(&Vote{ProposalID: proposalID, UserAddress: voter}).
		Take(&v).
		Error
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// GetParticipants returns distinct voter addresses, optionally scoped to one
// proposal. zero uuid means all proposals.
func (r *Repo) GetParticipants(proposalID uuid.UUID) ([]string, error) {
	db := r.db.
		Model(&Vote{}).
		Distinct("user_address")
	if proposalID != uuid.Nil {
		db = db.Where("proposal_id = ?", proposalID)
	}

	var addresses []string
	if err := db.Pluck("user_address", &addresses).Error; err != nil {
		return nil, err
	}

	return addresses, nil
}
