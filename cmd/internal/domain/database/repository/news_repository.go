package repository

import (
	"errors"

	"gorm.io/gorm"

	"newsnotes/cmd/internal/domain/entity"
)

type DefaultNewsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) *DefaultNewsRepository {
	return &DefaultNewsRepository{db: db}
}

// FindLatest returns at most 'limit' news, newest first.
func (n *DefaultNewsRepository) FindLatest(limit int) ([]*entity.News, error) {
	var news []*entity.News
	err := n.db.
		Order("published_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&news).Error
	if err != nil {
		return nil, err
	}
	return news, nil
}

func (n *DefaultNewsRepository) FindByID(id int64) (*entity.News, error) {
	var news entity.News
	err := n.db.First(&news, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &news, nil
}

// CreateAll inserts every item or none of them.
func (n *DefaultNewsRepository) CreateAll(items []*entity.News) error {
	if len(items) == 0 {
		return nil
	}

	return n.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(items, 100).Error
	})
}
