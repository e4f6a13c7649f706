package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

type CommentService interface {
	CreateComment(requester policy.Requester, newsID int64, req *contract.CommentRequest) (*contract.CommentResponse, apierror.ErrorResponse)
	GetComment(requester policy.Requester, commentID int64, action policy.Action) (*contract.CommentPageResponse, apierror.ErrorResponse)
	UpdateComment(requester policy.Requester, commentID int64, req *contract.CommentRequest) (*contract.CommentResponse, apierror.ErrorResponse)
	DeleteComment(requester policy.Requester, commentID int64) (*contract.CommentResponse, apierror.ErrorResponse)
	AuthorizeCreate(requester policy.Requester) apierror.ErrorResponse
}

type DefaultCommentRoute struct {
	CommentService CommentService
}

func NewCommentDefault(commentService CommentService) *DefaultCommentRoute {
	return &DefaultCommentRoute{CommentService: commentService}
}

// CreateComment handles the form posted on the news detail page.
func (h *DefaultCommentRoute) CreateComment(c echo.Context) error {
	newsID, apierr := parseID(c, "id")
	if apierr != nil {
		return respondError(c, apierr)
	}

	requester := utils.GetRequester(c)
	var req contract.CommentRequest
	if err := c.Bind(&req); err != nil {
		return malformedBody(c, h.CommentService.AuthorizeCreate(requester))
	}

	comment, apierr := h.CommentService.CreateComment(requester, newsID, &req)
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.Redirect(http.StatusFound, contract.NewsCommentsURL(comment.NewsID))
}

func (h *DefaultCommentRoute) EditForm(c echo.Context) error {
	return h.renderPage(c, policy.ActionEdit)
}

func (h *DefaultCommentRoute) Edit(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return respondError(c, apierr)
	}

	requester := utils.GetRequester(c)
	var req contract.CommentRequest
	if err := c.Bind(&req); err != nil {
		_, denied := h.CommentService.GetComment(requester, id, policy.ActionEdit)
		return malformedBody(c, denied)
	}

	comment, apierr := h.CommentService.UpdateComment(requester, id, &req)
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.Redirect(http.StatusFound, contract.NewsCommentsURL(comment.NewsID))
}

func (h *DefaultCommentRoute) DeleteForm(c echo.Context) error {
	return h.renderPage(c, policy.ActionDelete)
}

func (h *DefaultCommentRoute) Delete(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return respondError(c, apierr)
	}

	comment, apierr := h.CommentService.DeleteComment(utils.GetRequester(c), id)
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.Redirect(http.StatusFound, contract.NewsCommentsURL(comment.NewsID))
}

func (h *DefaultCommentRoute) renderPage(c echo.Context, action policy.Action) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return respondError(c, apierr)
	}

	page, apierr := h.CommentService.GetComment(utils.GetRequester(c), id, action)
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusOK, page)
}
