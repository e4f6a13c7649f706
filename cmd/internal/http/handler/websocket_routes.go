package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/infrastructure/aws/websocket"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

type WebSocketService interface {
	RegisterConnection(requester policy.Requester, connID string, newsID int64, exp int64) apierror.ErrorResponse
	RemoveConnection(connectionID string)
	HandleMessage(msg *contract.IncomingSocketMessage, connID string)
}

// DefaultWSRoute receives the integration calls of the API Gateway websocket
// API. The gateway owns the sockets, we only keep track of who follows which
// news item.
type DefaultWSRoute struct {
	WSService WebSocketService
}

func NewWSDefault(wsService WebSocketService) *DefaultWSRoute {
	return &DefaultWSRoute{WSService: wsService}
}

func (h *DefaultWSRoute) HandleConnect(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("connectionId"))
	}

	rawID := c.QueryParam("news_id")
	if rawID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("news_id"))
	}

	newsID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || newsID <= 0 {
		return c.JSON(http.StatusBadRequest, apierror.InvalidIDError)
	}

	var exp int64
	if token := utils.GetTokenData(c); token != nil {
		exp = token.Exp
	}

	if apierr := h.WSService.RegisterConnection(utils.GetRequester(c), connID, newsID, exp); apierr != nil {
		return respondError(c, apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleDisconnect(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID != "" {
		h.WSService.RemoveConnection(connID)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleMessage(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("connectionId"))
	}

	var msg contract.IncomingSocketMessage
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	h.WSService.HandleMessage(&msg, connID)
	return c.NoContent(http.StatusOK)
}
