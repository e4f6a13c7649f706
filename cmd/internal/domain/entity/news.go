package entity

// News is a publicly listed news item. Users never create these through the API,
// they are seeded by the importer.
type News struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Title       string `gorm:"not null;size:255"`
	Text        string `gorm:"not null"`
	PublishedAt int64  `gorm:"not null;index"`
}
