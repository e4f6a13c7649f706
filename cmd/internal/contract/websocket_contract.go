package contract

type EventType string

const (
	EventPing EventType = "ping"

	EventSessionExpired EventType = "SESSION_EXPIRED"
	EventAck            EventType = "ACK"

	EventCommentCreated EventType = "COMMENT_CREATED"
	EventCommentUpdated EventType = "COMMENT_UPDATED"
	EventCommentDeleted EventType = "COMMENT_DELETED"
)

// IncomingSocketMessage is used for messages we receive from the users.
type IncomingSocketMessage struct {
	Type EventType `json:"type"`
}

// OutgoingSocketMessage is what we send to the Client
type OutgoingSocketMessage struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}
