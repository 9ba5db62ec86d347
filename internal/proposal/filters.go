package proposal

import (
	"gorm.io/gorm"
)

type Filter interface {
	Apply(*gorm.DB) *gorm.DB
}

type PageFilter struct {
	Offset int
	Limit  int
}

func (f PageFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Offset(f.Offset).Limit(f.Limit)
}

type StatusFilter struct {
	Status Status
}

func (f StatusFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", f.Status)
}

type CategoryFilter struct {
	Category Category
}

func (f CategoryFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", f.Category)
}

type ProposerFilter struct {
	Proposer string
}

func (f ProposerFilter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("proposer = ?", f.Proposer)
}

type OrderByCreatedFilter struct {
	Desc bool
}

func (f OrderByCreatedFilter) Apply(db *gorm.DB) *gorm.DB {
	direction := "asc"
	if f.Desc {
		direction = "desc"
	}

	return db.Order("created_at " + direction)
}
