package entity

const (
	HeartbeatPeriodMillis    = int64(60 * 1000)
	HeartbeatToleranceMillis = int64(10 * 1000)

	// AnonymousConnectionTTLMillis bounds connections opened without a session token.
	AnonymousConnectionTTLMillis = int64(2 * 60 * 60 * 1000)
)

// Connection is an API Gateway websocket connection following the comments of one news item.
type Connection struct {
	ConnectionID    string `gorm:"primaryKey;autoIncrement:false"`
	UserID          int64  `gorm:"not null;index"` // 0 for anonymous readers
	NewsID          int64  `gorm:"not null;index"`
	ExpiresAt       int64  `gorm:"not null"`
	LastHeartbeatAt int64  `gorm:"not null;index"`
	CreatedAt       int64  `gorm:"not null;autoCreateTime:false"`
}
