package events

import "newsnotes/cmd/internal/contract"

type SocketEvent interface {
	GetType() contract.EventType
}

type Ack struct{}

func (*Ack) GetType() contract.EventType {
	return contract.EventAck
}

// SessionExpired tells the client not to reconnect with the same credentials.
type SessionExpired struct{}

func (*SessionExpired) GetType() contract.EventType {
	return contract.EventSessionExpired
}

type CommentCreated struct {
	*contract.CommentResponse
}

func (e *CommentCreated) GetType() contract.EventType {
	return contract.EventCommentCreated
}

type CommentUpdated struct {
	*contract.CommentResponse
}

func (e *CommentUpdated) GetType() contract.EventType {
	return contract.EventCommentUpdated
}

type CommentDeleted struct {
	CommentID int64 `json:"id"`
	NewsID    int64 `json:"news_id"`
}

func (e *CommentDeleted) GetType() contract.EventType {
	return contract.EventCommentDeleted
}
