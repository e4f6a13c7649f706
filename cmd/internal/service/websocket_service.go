package service

import (
	"context"
	"errors"

	"github.com/labstack/gommon/log"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/events"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/infrastructure/aws/websocket"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

type ConnectionRepository interface {
	Save(conn *entity.Connection) error
	Delete(connID string) error
	FindByNewsID(newsID int64) ([]string, error)
	FindStale(now int64, hbLimit int64) ([]*entity.Connection, error)
	UpdateHeartbeat(connID string, now int64) error
}

type WebSocketService struct {
	ConnRepo ConnectionRepository
	NewsRepo NewsRepository
	Gateway  websocket.GatewayClient
}

func NewWebSocketService(repo ConnectionRepository, newsRepo NewsRepository, gateway websocket.GatewayClient) *WebSocketService {
	return &WebSocketService{
		ConnRepo: repo,
		NewsRepo: newsRepo,
		Gateway:  gateway,
	}
}

// RegisterConnection subscribes a connection to the comments of one news item.
// 'exp' is the session expiry in seconds, anonymous readers pass 0 and get a
// fixed lifetime instead.
func (s *WebSocketService) RegisterConnection(requester policy.Requester, connectionID string, newsID int64, exp int64) apierror.ErrorResponse {
	news, err := s.NewsRepo.FindByID(newsID)
	if err != nil {
		log.Errorf("failed to fetch news %d: %v", newsID, err)
		return apierror.InternalServerError
	}

	if news == nil {
		return apierror.NotFoundError
	}

	now := utils.NowUTC()
	expiresAt := exp * 1000 // "exp" is stored in seconds, our app uses millis
	if requester.IsAnonymous() || exp <= 0 {
		expiresAt = now + entity.AnonymousConnectionTTLMillis
	}

	conn := &entity.Connection{
		ConnectionID:    connectionID,
		UserID:          requester.UserID(),
		NewsID:          news.ID,
		ExpiresAt:       expiresAt,
		LastHeartbeatAt: now, // Avoid users getting disconnected immediately
		CreatedAt:       now,
	}

	if err = s.ConnRepo.Save(conn); err != nil {
		log.Errorf("failed to save connection: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

func (s *WebSocketService) RemoveConnection(connectionID string) {
	// We don't return error here because if it fails, it's not the client's fault
	if err := s.ConnRepo.Delete(connectionID); err != nil {
		log.Warnf("failed to remove connection %s: %v", connectionID, err)
	}
}

func (s *WebSocketService) HandleMessage(msg *contract.IncomingSocketMessage, connID string) {
	switch msg.Type {
	case contract.EventPing:
		s.handlePing(connID)
	default:
		log.Debugf("ignoring socket message of type '%s' from %s", msg.Type, connID)
	}
}

// BroadcastToNews sends an event to every connection following a news item.
func (s *WebSocketService) BroadcastToNews(ctx context.Context, newsID int64, evt events.SocketEvent) {
	conns, err := s.ConnRepo.FindByNewsID(newsID)
	if err != nil {
		log.Errorf("failed to fetch connections of news %d: %v", newsID, err)
		return
	}

	envelope := &contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	}

	for _, connID := range conns {
		// One failing connection must not stop the others
		err := s.Gateway.PostToConnection(ctx, connID, envelope)
		if errors.Is(err, websocket.ErrConnectionGone) {
			s.RemoveConnection(connID)
		}
	}
}

// CleanupStale drops every expired or silent connection and returns how many
// were dropped.
func (s *WebSocketService) CleanupStale(ctx context.Context) int {
	hbLimit := entity.HeartbeatPeriodMillis + entity.HeartbeatToleranceMillis
	conns, err := s.ConnRepo.FindStale(utils.NowUTC(), hbLimit)
	if err != nil {
		log.Errorf("failed to fetch stale connections: %v", err)
		return 0
	}

	envelope := &contract.OutgoingSocketMessage{Type: (&events.SessionExpired{}).GetType()}
	for _, conn := range conns {
		// Notify Client (So they know NOT to try reconnecting)
		_ = s.Gateway.PostToConnection(ctx, conn.ConnectionID, envelope)

		// Tell AWS we are dropping the connection
		_ = s.Gateway.DeleteConnection(ctx, conn.ConnectionID)

		s.RemoveConnection(conn.ConnectionID)
	}
	return len(conns)
}

func (s *WebSocketService) handlePing(connID string) {
	now := utils.NowUTC()
	err := s.ConnRepo.UpdateHeartbeat(connID, now)
	if err != nil {
		log.Errorf("failed to update heartbeat: %v", err)
		return
	}

	go func(conn string) {
		err := s.Gateway.PostToConnection(context.Background(), conn, &contract.OutgoingSocketMessage{
			Type: (&events.Ack{}).GetType(),
		})
		if err != nil {
			log.Errorf("failed to post ack to conn %s: %v", conn, err)
		}
	}(connID)
}
