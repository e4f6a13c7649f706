package service

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/events"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/domain/validation"
	"newsnotes/cmd/internal/utils/apierror"
)

func TestCreateCommentBindsAuthorAndNews(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")

	before := f.count(t, &entity.Comment{})
	resp, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: "Текст комментария"})
	require.Nil(t, apierr)

	assert.Equal(t, before+1, f.count(t, &entity.Comment{}))
	assert.Equal(t, news.ID, resp.NewsID)
	assert.Equal(t, author.ID, resp.Author.ID)
	assert.Equal(t, "author", resp.Author.Username)

	stored, err := f.commentRepo.FindByID(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, stored.AuthorID)
	assert.Equal(t, news.ID, stored.NewsID)
	assert.Equal(t, "Текст комментария", stored.Text)
}

func TestCreateCommentAnonymousRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]

	origin := contract.NewsURL(news.ID)
	_, apierr := f.comments.CreateComment(policy.Anonymous(origin), news.ID, &contract.CommentRequest{Text: "hello"})

	redirect, ok := apierr.(*apierror.RedirectError)
	require.True(t, ok, "expected a redirect, got %T", apierr)
	assert.Equal(t, http.StatusFound, redirect.Code())
	assert.Equal(t, testLoginURL+"?next="+origin, redirect.Location)
	assert.Zero(t, f.count(t, &entity.Comment{}))
}

func TestCreateCommentRejectsBannedWords(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")

	for _, word := range validation.BannedWords {
		t.Run(word, func(t *testing.T) {
			text := "Какой-то текст, " + word + ", еще текст"
			_, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: text})

			structured, ok := apierr.(*apierror.StructuredError)
			require.True(t, ok, "expected form errors, got %T", apierr)
			assert.Equal(t, []string{validation.BannedContentMessage}, structured.Errors["text"])
			assert.Zero(t, f.count(t, &entity.Comment{}))
		})
	}
}

func TestCreateCommentOnMissingNews(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	_, apierr := f.comments.CreateComment(as(author), 12345, &contract.CommentRequest{Text: "hello"})
	assert.Equal(t, apierror.NotFoundError, apierr)
}

func TestCommentsAreListedOldestFirst(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")

	// created_at has millisecond precision
	for _, text := range []string{"first", "second", "third"} {
		_, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: text})
		require.Nil(t, apierr)
		time.Sleep(2 * time.Millisecond)
	}

	detail, apierr := f.news.GetNewsDetail(policy.Anonymous("/"), news.ID)
	require.Nil(t, apierr)
	require.Len(t, detail.Comments, 3)
	assert.Equal(t, "first", detail.Comments[0].Text)
	assert.Equal(t, "second", detail.Comments[1].Text)
	assert.Equal(t, "third", detail.Comments[2].Text)
	for i := 1; i < len(detail.Comments); i++ {
		assert.LessOrEqual(t, detail.Comments[i-1].CreatedAt, detail.Comments[i].CreatedAt)
	}
}

func TestCommentOwnership(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")
	reader := f.user(t, "reader")

	created, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: "original"})
	require.Nil(t, apierr)

	t.Run("NonOwnerEditIsNotFound", func(t *testing.T) {
		_, apierr := f.comments.UpdateComment(as(reader), created.ID, &contract.CommentRequest{Text: "hijacked"})
		assert.Equal(t, apierror.NotFoundError, apierr)

		stored, err := f.commentRepo.FindByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", stored.Text)
	})

	t.Run("NonOwnerDeleteIsNotFound", func(t *testing.T) {
		_, apierr := f.comments.DeleteComment(as(reader), created.ID)
		assert.Equal(t, apierror.NotFoundError, apierr)
		assert.Equal(t, int64(1), f.count(t, &entity.Comment{}))
	})

	t.Run("NonOwnerPagesAreNotFound", func(t *testing.T) {
		for _, action := range []policy.Action{policy.ActionEdit, policy.ActionDelete} {
			_, apierr := f.comments.GetComment(as(reader), created.ID, action)
			assert.Equal(t, apierror.NotFoundError, apierr)
		}
	})

	t.Run("AnonymousDeleteRedirects", func(t *testing.T) {
		_, apierr := f.comments.DeleteComment(policy.Anonymous("/delete_comment/1/"), created.ID)
		_, ok := apierr.(*apierror.RedirectError)
		assert.True(t, ok)
		assert.Equal(t, int64(1), f.count(t, &entity.Comment{}))
	})

	t.Run("OwnerEditPageHasForm", func(t *testing.T) {
		page, apierr := f.comments.GetComment(as(author), created.ID, policy.ActionEdit)
		require.Nil(t, apierr)
		require.NotNil(t, page.Form)
		assert.Equal(t, "original", page.Form.Fields[0].Value)
	})
}

func TestUpdateCommentKeepsCreationTime(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")

	created, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: "before"})
	require.Nil(t, apierr)
	before, err := f.commentRepo.FindByID(created.ID)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	updated, apierr := f.comments.UpdateComment(as(author), created.ID, &contract.CommentRequest{Text: "after"})
	require.Nil(t, apierr)
	assert.Equal(t, "after", updated.Text)

	after, err := f.commentRepo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, "after", after.Text)
	assert.Greater(t, after.UpdatedAt, before.UpdatedAt)
}

func TestUpdateCommentRejectsBannedWordsWithoutChanges(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")

	created, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: "clean"})
	require.Nil(t, apierr)

	_, apierr = f.comments.UpdateComment(as(author), created.ID, &contract.CommentRequest{Text: "ты негодяй"})
	_, ok := apierr.(*apierror.StructuredError)
	require.True(t, ok)

	stored, err := f.commentRepo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "clean", stored.Text)
}

func TestOwnerDeletesComment(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")

	created, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: "bye"})
	require.Nil(t, apierr)

	deleted, apierr := f.comments.DeleteComment(as(author), created.ID)
	require.Nil(t, apierr)
	assert.Equal(t, news.ID, deleted.NewsID)
	assert.Zero(t, f.count(t, &entity.Comment{}))
}

func TestCommentEventsReachNotifier(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")

	notifier := &channelNotifier{ch: make(chan events.SocketEvent, 3)}
	f.comments.Notifier = notifier

	created, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: "live"})
	require.Nil(t, apierr)
	evt := receive(t, notifier.ch)
	assert.Equal(t, contract.EventCommentCreated, evt.GetType())

	_, apierr = f.comments.UpdateComment(as(author), created.ID, &contract.CommentRequest{Text: "edited"})
	require.Nil(t, apierr)
	assert.Equal(t, contract.EventCommentUpdated, receive(t, notifier.ch).GetType())

	_, apierr = f.comments.DeleteComment(as(author), created.ID)
	require.Nil(t, apierr)
	deleted, ok := receive(t, notifier.ch).(*events.CommentDeleted)
	require.True(t, ok)
	assert.Equal(t, created.ID, deleted.CommentID)
}

func TestCommentTextIsTrimmedAndRequired(t *testing.T) {
	f := newFixture(t)
	news := f.seedNews(t, 1)[0]
	author := f.user(t, "author")

	_, apierr := f.comments.CreateComment(as(author), news.ID, &contract.CommentRequest{Text: strings.Repeat(" ", 5)})
	structured, ok := apierr.(*apierror.StructuredError)
	require.True(t, ok)
	assert.Contains(t, structured.Errors, "text")
}

func receive(t *testing.T, ch chan events.SocketEvent) events.SocketEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return nil
	}
}
