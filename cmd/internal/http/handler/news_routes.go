package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

type NewsService interface {
	GetHome(requester policy.Requester) (*contract.HomeResponse, apierror.ErrorResponse)
	GetNewsDetail(requester policy.Requester, newsID int64) (*contract.NewsDetailResponse, apierror.ErrorResponse)
}

type DefaultNewsRoute struct {
	NewsService NewsService
}

func NewNewsDefault(newsService NewsService) *DefaultNewsRoute {
	return &DefaultNewsRoute{NewsService: newsService}
}

func (n *DefaultNewsRoute) GetHome(c echo.Context) error {
	resp, apierr := n.NewsService.GetHome(utils.GetRequester(c))
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (n *DefaultNewsRoute) GetNewsDetail(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return respondError(c, apierr)
	}

	resp, apierr := n.NewsService.GetNewsDetail(utils.GetRequester(c), id)
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
