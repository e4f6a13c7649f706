package entity

type Comment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	NewsID    int64  `gorm:"not null;index"` // References: news(id)
	AuthorID  int64  `gorm:"not null;index"` // References: users(id)
	Text      string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false"`

	// Relations
	Author User `gorm:"foreignKey:AuthorID;references:ID"`
}

func (c *Comment) OwnerID() int64 {
	if c == nil {
		return 0
	}
	return c.AuthorID
}
