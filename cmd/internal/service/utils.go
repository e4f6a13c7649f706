package service

import (
	"errors"
	"strconv"

	"github.com/labstack/gommon/log"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/domain/validation"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

// authorize runs the guard and turns anything but Allow into the response the
// handler has to render.
func authorize(guard *policy.Guard, requester policy.Requester, action policy.Action, record policy.Owned) apierror.ErrorResponse {
	decision := guard.Check(requester, action, record)
	switch decision.Kind {
	case policy.Allow:
		return nil
	case policy.RedirectToLogin:
		return apierror.NewRedirect(decision.Location)
	default:
		return apierror.NotFoundError
	}
}

// fromRuleError maps a validation rule failure to a form error, anything
// else is logged as a storage failure.
func fromRuleError(err error, op string) apierror.ErrorResponse {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return apierror.FromRuleError(verr)
	}

	log.Errorf("failed to %s: %v", op, err)
	return apierror.InternalServerError
}

// validationFailed maps go-playground/validator errors to the form error body.
func validationFailed(err error) apierror.ErrorResponse {
	if resp := apierror.FromValidationError(err); resp != nil {
		return resp
	}

	log.Errorf("unexpected validation failure: %v", err)
	return apierror.InternalServerError
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func toNewsResponse(news *entity.News) *contract.NewsResponse {
	return &contract.NewsResponse{
		ID:    news.ID,
		Title: news.Title,
		Text:  news.Text,
		Date:  utils.FormatEpoch(news.PublishedAt),
	}
}

func toCommentResponse(comment *entity.Comment) *contract.CommentResponse {
	return &contract.CommentResponse{
		ID:     comment.ID,
		NewsID: comment.NewsID,
		Author: &contract.AuthorResponse{
			ID:       comment.AuthorID,
			Username: comment.Author.Username,
		},
		Text:      comment.Text,
		CreatedAt: utils.FormatEpoch(comment.CreatedAt),
		UpdatedAt: utils.FormatEpoch(comment.UpdatedAt),
	}
}

func toNoteResponse(note *entity.Note) *contract.NoteResponse {
	return &contract.NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Text:      note.Text,
		Slug:      note.Slug,
		AuthorID:  note.AuthorID,
		CreatedAt: utils.FormatEpoch(note.CreatedAt),
		UpdatedAt: utils.FormatEpoch(note.UpdatedAt),
	}
}

func toUserResponse(user *entity.User) *contract.UserResponse {
	return &contract.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
	}
}
