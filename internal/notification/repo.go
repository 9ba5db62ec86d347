package notification

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

func (r *Repo) Create(n *Notification) error {
	return r.db.Create(&n).Error
}

func (r *Repo) CreateBatch(list []Notification) error {
	if len(list) == 0 {
		return nil
	}

	return r.db.Create(&list).Error
}

func (r *Repo) GetByID(id uuid.UUID) (*Notification, error) {
	n := Notification{ID: id}
	if err := r.db.Take(&n).Error; err != nil {
		return nil, err
	}

	return &n, nil
}

func (r *Repo) GetByAddress(address string, limit int) ([]Notification, error) {
	var list []Notification

	err := r.db.
		Where(&Notification{UserAddress: address}).
		Order("created_at desc").
		Limit(limit).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (r *Repo) UnreadCount(address string) (int64, error) {
	var count int64

	err := r.db.
		Model(&Notification{}).
		Where("user_address = ? and read = false", address).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repo) MarkRead(id uuid.UUID) error {
	return r.db.
		Model(&Notification{}).
		Where("id = ? and read = false", id).
		Updates(map[string]any{
			"read": true,
		}).
		Error
}

func (r *Repo) MarkAllRead(address string) error {
	return r.db.
		Model(&Notification{}).
		Where("user_address = ? and read = false", address).
		Updates(map[string]any{
			"read": true,
		}).
		Error
}
