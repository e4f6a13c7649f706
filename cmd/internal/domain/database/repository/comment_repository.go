package repository

import (
	"errors"

	"gorm.io/gorm"

	"newsnotes/cmd/internal/domain/entity"
)

type DefaultCommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *DefaultCommentRepository {
	return &DefaultCommentRepository{db: db}
}

func (c *DefaultCommentRepository) FindByID(id int64) (*entity.Comment, error) {
	var comment entity.Comment
	err := c.db.
		Preload("Author").
		First(&comment, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByNewsID returns every comment of a news item, oldest first.
func (c *DefaultCommentRepository) FindByNewsID(newsID int64) ([]*entity.Comment, error) {
	var comments []*entity.Comment
	err := c.db.
		Preload("Author").
		Where("news_id = ?", newsID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *DefaultCommentRepository) Create(comment *entity.Comment) error {
	return c.db.Omit("Author").Create(comment).Error
}

func (c *DefaultCommentRepository) Save(comment *entity.Comment) error {
	return c.db.Omit("Author").Save(comment).Error
}

func (c *DefaultCommentRepository) Delete(comment *entity.Comment) error {
	return c.db.Delete(&entity.Comment{}, comment.ID).Error
}
