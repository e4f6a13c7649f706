package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/domain/validation"
	"newsnotes/cmd/internal/testutil"
	"newsnotes/cmd/internal/utils/apierror"
)

func TestCreateNoteDerivesSlugFromCyrillicTitle(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	note, apierr := f.notes.CreateNote(as(author), &contract.NoteRequest{Title: "Новая заметка", Text: "Текст заметки"})
	require.Nil(t, apierr)

	assert.NotEmpty(t, note.Slug)
	assert.Equal(t, validation.Slugify("Новая заметка"), note.Slug)
	assert.Equal(t, author.ID, note.AuthorID)
	assert.Equal(t, int64(1), f.count(t, &entity.Note{}))

	stored, err := f.noteRepo.FindBySlug(note.Slug)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Новая заметка", stored.Title)
	assert.Equal(t, "Текст заметки", stored.Text)
}

func TestCreateNoteKeepsSuppliedSlug(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	note, apierr := f.notes.CreateNote(as(author), &contract.NoteRequest{Title: "Title", Text: "Text", Slug: "my_slug-1"})
	require.Nil(t, apierr)
	assert.Equal(t, "my_slug-1", note.Slug)
}

func TestCreateNoteRejectsDuplicateSlug(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	other := f.user(t, "other")

	first, apierr := f.notes.CreateNote(as(author), &contract.NoteRequest{Title: "Новая заметка", Text: "one"})
	require.Nil(t, apierr)

	tests := []struct {
		name string
		req  *contract.NoteRequest
	}{
		{"DerivedDuplicate", &contract.NoteRequest{Title: "Новая заметка", Text: "two"}},
		{"SuppliedDuplicate", &contract.NoteRequest{Title: "Другая", Text: "two", Slug: first.Slug}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Slugs are unique store-wide, not per author
			_, apierr := f.notes.CreateNote(as(other), tt.req)

			structured, ok := apierr.(*apierror.StructuredError)
			require.True(t, ok, "expected form errors, got %T", apierr)
			require.Len(t, structured.Errors["slug"], 1)
			assert.True(t, strings.HasPrefix(structured.Errors["slug"][0], first.Slug))
			assert.Equal(t, int64(1), f.count(t, &entity.Note{}))
		})
	}
}

func TestCreateNoteConcurrentSameTitle(t *testing.T) {
	f := newFixtureOn(t, testutil.NewFileDB(t))
	author := f.user(t, "author")

	const workers = 20
	results := make([]apierror.ErrorResponse, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = f.notes.CreateNote(as(author), &contract.NoteRequest{Title: "Новая заметка", Text: "Текст"})
		}(i)
	}
	close(start)
	wg.Wait()

	created, rejected := 0, 0
	for _, apierr := range results {
		if apierr == nil {
			created++
			continue
		}
		structured, ok := apierr.(*apierror.StructuredError)
		require.True(t, ok, "expected form errors, got %T", apierr)
		require.Len(t, structured.Errors["slug"], 1)
		rejected++
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, int64(1), f.count(t, &entity.Note{}))
}

func TestCreateNoteValidation(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	tests := []struct {
		name  string
		req   *contract.NoteRequest
		field string
	}{
		{"MissingTitle", &contract.NoteRequest{Text: "text"}, "title"},
		{"MissingText", &contract.NoteRequest{Title: "title"}, "text"},
		{"TitleTooLong", &contract.NoteRequest{Title: strings.Repeat("a", 101), Text: "text"}, "title"},
		{"InvalidSlug", &contract.NoteRequest{Title: "title", Text: "text", Slug: "with space"}, "slug"},
		{"UnderivableSlug", &contract.NoteRequest{Title: "!!!", Text: "text"}, "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, apierr := f.notes.CreateNote(as(author), tt.req)

			structured, ok := apierr.(*apierror.StructuredError)
			require.True(t, ok, "expected form errors, got %T", apierr)
			assert.Contains(t, structured.Errors, tt.field)
			assert.Zero(t, f.count(t, &entity.Note{}))
		})
	}
}

func TestCreateNoteAnonymousRedirects(t *testing.T) {
	f := newFixture(t)

	_, apierr := f.notes.CreateNote(policy.Anonymous(contract.NotesAddURL), &contract.NoteRequest{Title: "t", Text: "t"})
	redirect, ok := apierr.(*apierror.RedirectError)
	require.True(t, ok)
	assert.Equal(t, testLoginURL+"?next=/notes/add/", redirect.Location)
	assert.Zero(t, f.count(t, &entity.Note{}))
}

func TestListNotesIsOwnerScopedInInsertionOrder(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	other := f.user(t, "other")

	for _, title := range []string{"Первая", "Вторая", "Третья"} {
		_, apierr := f.notes.CreateNote(as(author), &contract.NoteRequest{Title: title, Text: "text"})
		require.Nil(t, apierr)
	}
	_, apierr := f.notes.CreateNote(as(other), &contract.NoteRequest{Title: "Чужая", Text: "text"})
	require.Nil(t, apierr)

	list, apierr := f.notes.ListNotes(as(author))
	require.Nil(t, apierr)
	require.Len(t, list.ObjectList, 3)
	assert.Equal(t, "Первая", list.ObjectList[0].Title)
	assert.Equal(t, "Вторая", list.ObjectList[1].Title)
	assert.Equal(t, "Третья", list.ObjectList[2].Title)

	_, apierr = f.notes.ListNotes(policy.Anonymous("/notes/list/"))
	_, ok := apierr.(*apierror.RedirectError)
	assert.True(t, ok)
}

func TestNoteOwnership(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	reader := f.user(t, "reader")

	note, apierr := f.notes.CreateNote(as(author), &contract.NoteRequest{Title: "Secret", Text: "original"})
	require.Nil(t, apierr)

	for _, action := range []policy.Action{policy.ActionRead, policy.ActionEdit, policy.ActionDelete} {
		_, apierr := f.notes.GetNote(as(reader), note.Slug, action)
		assert.Equal(t, apierror.NotFoundError, apierr)
	}

	_, apierr = f.notes.UpdateNote(as(reader), note.Slug, &contract.NoteRequest{Title: "Hacked", Text: "hacked"})
	assert.Equal(t, apierror.NotFoundError, apierr)

	apierr = f.notes.DeleteNote(as(reader), note.Slug)
	assert.Equal(t, apierror.NotFoundError, apierr)

	// A missing note answers exactly like somebody else's note
	_, apierr = f.notes.GetNote(as(reader), "does-not-exist", policy.ActionRead)
	assert.Equal(t, apierror.NotFoundError, apierr)

	stored, err := f.noteRepo.FindBySlug(note.Slug)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Secret", stored.Title)
	assert.Equal(t, "original", stored.Text)
}

func TestUpdateNote(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	note, apierr := f.notes.CreateNote(as(author), &contract.NoteRequest{Title: "Title", Text: "Text", Slug: "keep-me"})
	require.Nil(t, apierr)
	other, apierr := f.notes.CreateNote(as(author), &contract.NoteRequest{Title: "Other", Text: "Text", Slug: "taken"})
	require.Nil(t, apierr)

	t.Run("SameSlugIsNotADuplicate", func(t *testing.T) {
		time.Sleep(2 * time.Millisecond)
		updated, apierr := f.notes.UpdateNote(as(author), note.Slug, &contract.NoteRequest{Title: "New title", Text: "New text", Slug: "keep-me"})
		require.Nil(t, apierr)
		assert.Equal(t, "keep-me", updated.Slug)
		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, note.CreatedAt, updated.CreatedAt)
	})

	t.Run("SlugOfAnotherNoteIsRejected", func(t *testing.T) {
		_, apierr := f.notes.UpdateNote(as(author), note.Slug, &contract.NoteRequest{Title: "x", Text: "x", Slug: other.Slug})
		structured, ok := apierr.(*apierror.StructuredError)
		require.True(t, ok)
		assert.Contains(t, structured.Errors, "slug")

		stored, err := f.noteRepo.FindBySlug("keep-me")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "New title", stored.Title)
	})

	t.Run("EmptySlugIsDerivedAgain", func(t *testing.T) {
		updated, apierr := f.notes.UpdateNote(as(author), "keep-me", &contract.NoteRequest{Title: "Fresh title", Text: "x"})
		require.Nil(t, apierr)
		assert.Equal(t, "fresh-title", updated.Slug)
	})
}

func TestOwnerDeletesNote(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	note, apierr := f.notes.CreateNote(as(author), &contract.NoteRequest{Title: "Bye", Text: "Text"})
	require.Nil(t, apierr)

	require.Nil(t, f.notes.DeleteNote(as(author), note.Slug))
	assert.Zero(t, f.count(t, &entity.Note{}))
}

func TestAuthorizePage(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	assert.Nil(t, f.notes.AuthorizePage(as(author)))

	apierr := f.notes.AuthorizePage(policy.Anonymous(contract.NotesDoneURL))
	redirect, ok := apierr.(*apierror.RedirectError)
	require.True(t, ok)
	assert.Equal(t, testLoginURL+"?next=/notes/done/", redirect.Location)
}
