package entity

// User is the general basic structure of all users across the platform
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false"`
	SubUUID      string `gorm:"not null;uniqueIndex"`
	Username     string `gorm:"not null;uniqueIndex;size:150"`
	PasswordHash string `gorm:"not null;default:''"` // Empty for Cognito accounts
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    int64  `gorm:"not null;autoUpdateTime:false"`
}
