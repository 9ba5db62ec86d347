package discussion

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(d *Discussion) error {
	return r.db.Create(&d).Error
}

func (r *Repo) GetByID(id uuid.UUID) (*Discussion, error) {
	d := Discussion{ID: id}
	if err := r.db.Take(&d).Error; err != nil {
		return nil, err
	}

	return &d, nil
}

func (r *Repo) GetByProposal(proposalID uuid.UUID) ([]Discussion, error) {
	var list []Discussion

	err := r.db.
		Where(&Discussion{ProposalID: proposalID}).
		Order("created_at asc").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// GetParticipants returns distinct commenter addresses across all proposals
func (r *Repo) GetParticipants() ([]string, error) {
	var addresses []string

	err := r.db.
		Model(&Discussion{}).
		Distinct("user_address").
		Pluck("user_address", &addresses).
		Error
	if err != nil {
		return nil, err
	}

	return addresses, nil
}
