package entity

// NoteSlugMaxLength is the size of the slug column, derived slugs are cut to it.
const NoteSlugMaxLength = 100

type Note struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Title     string `gorm:"not null;size:100"`
	Text      string `gorm:"not null"`
	Slug      string `gorm:"not null;uniqueIndex;size:100"`
	AuthorID  int64  `gorm:"not null;index"` // References: users(id)
	CreatedAt int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false"`
}

func (n *Note) OwnerID() int64 {
	if n == nil {
		return 0
	}
	return n.AuthorID
}
