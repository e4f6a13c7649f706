package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/events"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/domain/validation"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
	"newsnotes/cmd/internal/utils/uid"
)

type CommentRepository interface {
	FindByID(id int64) (*entity.Comment, error)
	FindByNewsID(newsID int64) ([]*entity.Comment, error)
	Create(comment *entity.Comment) error
	Save(comment *entity.Comment) error
	Delete(comment *entity.Comment) error
}

// CommentNotifier pushes comment events to the readers of a news item.
type CommentNotifier interface {
	BroadcastToNews(ctx context.Context, newsID int64, evt events.SocketEvent)
}

type DefaultCommentService struct {
	CommentRepo CommentRepository
	NewsRepo    NewsRepository
	Guard       *policy.Guard
	Validate    *validator.Validate

	// Notifier is optional, live comments are off without it.
	Notifier CommentNotifier
}

func NewCommentService(
	commentRepo CommentRepository,
	newsRepo NewsRepository,
	guard *policy.Guard,
	validate *validator.Validate,
	notifier CommentNotifier,
) *DefaultCommentService {
	return &DefaultCommentService{
		CommentRepo: commentRepo,
		NewsRepo:    newsRepo,
		Guard:       guard,
		Validate:    validate,
		Notifier:    notifier,
	}
}

func (c *DefaultCommentService) CreateComment(requester policy.Requester, newsID int64, req *contract.CommentRequest) (*contract.CommentResponse, apierror.ErrorResponse) {
	if apierr := c.AuthorizeCreate(requester); apierr != nil {
		return nil, apierr
	}

	news, err := c.NewsRepo.FindByID(newsID)
	if err != nil {
		log.Errorf("failed to fetch news %d: %v", newsID, err)
		return nil, apierror.InternalServerError
	}

	if news == nil {
		return nil, apierror.NotFoundError
	}

	if apierr := c.validateRequest(req); apierr != nil {
		return nil, apierr
	}

	now := utils.NowUTC()
	comment := &entity.Comment{
		ID:        uid.Generate(),
		NewsID:    news.ID,
		AuthorID:  requester.User.ID,
		Text:      req.Text,
		CreatedAt: now,
		UpdatedAt: now,
		Author:    *requester.User,
	}

	if err = c.CommentRepo.Create(comment); err != nil {
		log.Errorf("failed to save comment: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := toCommentResponse(comment)
	go c.notify(news.ID, &events.CommentCreated{CommentResponse: resp})
	return resp, nil
}

// AuthorizeCreate runs the access check of CreateComment on its own.
func (c *DefaultCommentService) AuthorizeCreate(requester policy.Requester) apierror.ErrorResponse {
	return authorize(c.Guard, requester, policy.ActionCreate, nil)
}

// GetComment backs the edit and delete confirmation pages, 'action' tells
// which one is asking.
func (c *DefaultCommentService) GetComment(requester policy.Requester, commentID int64, action policy.Action) (*contract.CommentPageResponse, apierror.ErrorResponse) {
	comment, apierr := c.fetchOwned(requester, commentID, action)
	if apierr != nil {
		return nil, apierr
	}

	resp := &contract.CommentPageResponse{Comment: toCommentResponse(comment)}
	if action == policy.ActionEdit {
		resp.Form = contract.NewCommentForm(editCommentURL(comment.ID), comment.Text)
	}
	return resp, nil
}

// UpdateComment replaces the text of a comment, its creation time is kept.
func (c *DefaultCommentService) UpdateComment(requester policy.Requester, commentID int64, req *contract.CommentRequest) (*contract.CommentResponse, apierror.ErrorResponse) {
	comment, apierr := c.fetchOwned(requester, commentID, policy.ActionEdit)
	if apierr != nil {
		return nil, apierr
	}

	if apierr = c.validateRequest(req); apierr != nil {
		return nil, apierr
	}

	comment.Text = req.Text
	comment.UpdatedAt = utils.NowUTC()
	if err := c.CommentRepo.Save(comment); err != nil {
		log.Errorf("failed to update comment %d: %v", comment.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := toCommentResponse(comment)
	go c.notify(comment.NewsID, &events.CommentUpdated{CommentResponse: resp})
	return resp, nil
}

// DeleteComment returns the removed comment so callers know where it lived.
func (c *DefaultCommentService) DeleteComment(requester policy.Requester, commentID int64) (*contract.CommentResponse, apierror.ErrorResponse) {
	comment, apierr := c.fetchOwned(requester, commentID, policy.ActionDelete)
	if apierr != nil {
		return nil, apierr
	}

	if err := c.CommentRepo.Delete(comment); err != nil {
		log.Errorf("failed to delete comment %d: %v", comment.ID, err)
		return nil, apierror.InternalServerError
	}

	go c.notify(comment.NewsID, &events.CommentDeleted{CommentID: comment.ID, NewsID: comment.NewsID})
	return toCommentResponse(comment), nil
}

// fetchOwned loads the comment and checks it against the guard. A missing
// comment goes through the guard too, so anonymous requesters are redirected
// before learning whether it exists.
func (c *DefaultCommentService) fetchOwned(requester policy.Requester, commentID int64, action policy.Action) (*entity.Comment, apierror.ErrorResponse) {
	comment, err := c.CommentRepo.FindByID(commentID)
	if err != nil {
		log.Errorf("failed to fetch comment %d: %v", commentID, err)
		return nil, apierror.InternalServerError
	}

	if apierr := authorize(c.Guard, requester, action, comment); apierr != nil {
		return nil, apierr
	}
	return comment, nil
}

func (c *DefaultCommentService) validateRequest(req *contract.CommentRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := c.Validate.Struct(req); err != nil {
		return validationFailed(err)
	}

	if verr := validation.ValidateCommentText(req.Text); verr != nil {
		return apierror.FromRuleError(verr)
	}
	return nil
}

func (c *DefaultCommentService) notify(newsID int64, evt events.SocketEvent) {
	if c.Notifier == nil {
		return
	}
	c.Notifier.BroadcastToNews(context.Background(), newsID, evt)
}

func editCommentURL(commentID int64) string {
	return "/edit_comment/" + formatID(commentID) + "/"
}
