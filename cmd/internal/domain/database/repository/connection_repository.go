package repository

import (
	"gorm.io/gorm"

	"newsnotes/cmd/internal/domain/entity"
)

type DefaultConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *DefaultConnectionRepository {
	return &DefaultConnectionRepository{db: db}
}

func (c *DefaultConnectionRepository) Save(conn *entity.Connection) error {
	return c.db.Save(conn).Error
}

func (c *DefaultConnectionRepository) Delete(connID string) error {
	return c.db.Delete(&entity.Connection{}, "connection_id = ?", connID).Error
}

// FindByNewsID returns the ids of every connection following a news item.
func (c *DefaultConnectionRepository) FindByNewsID(newsID int64) ([]string, error) {
	var ids []string
	result := c.db.Model(&entity.Connection{}).
		Where("news_id = ?", newsID).
		Pluck("connection_id", &ids)

	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

// FindStale returns connections past their expiry, or whose last heartbeat is
// older than 'hbLimit' millis.
func (c *DefaultConnectionRepository) FindStale(now int64, hbLimit int64) ([]*entity.Connection, error) {
	var conns []*entity.Connection
	err := c.db.
		Where("expires_at < ? OR last_heartbeat_at < ?", now, now-hbLimit).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

func (c *DefaultConnectionRepository) UpdateHeartbeat(connID string, now int64) error {
	return c.db.Model(&entity.Connection{}).
		Where("connection_id = ?", connID).
		Update("last_heartbeat_at", now).Error
}
