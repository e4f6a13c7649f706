package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/domain/validation"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
	"newsnotes/cmd/internal/utils/uid"
)

type NoteRepository interface {
	FindByAuthorID(authorID int64) ([]*entity.Note, error)
	FindBySlug(slug string) (*entity.Note, error)
	ExistsBySlug(slug string, excludeID int64) (bool, error)
	CreateIfSlugFree(note *entity.Note) (bool, error)
	UpdateIfSlugFree(note *entity.Note) (bool, error)
	Delete(note *entity.Note) error
}

type DefaultNoteService struct {
	NoteRepo NoteRepository
	Guard    *policy.Guard
	Validate *validator.Validate
}

func NewNoteService(noteRepo NoteRepository, guard *policy.Guard, validate *validator.Validate) *DefaultNoteService {
	return &DefaultNoteService{
		NoteRepo: noteRepo,
		Guard:    guard,
		Validate: validate,
	}
}

// AuthorizePage checks pages that only need a session, like the add form or
// the success page.
func (n *DefaultNoteService) AuthorizePage(requester policy.Requester) apierror.ErrorResponse {
	return authorize(n.Guard, requester, policy.ActionViewPrivate, nil)
}

// ListNotes returns the requester's own notes in the order they were written.
func (n *DefaultNoteService) ListNotes(requester policy.Requester) (*contract.NoteListResponse, apierror.ErrorResponse) {
	if apierr := authorize(n.Guard, requester, policy.ActionViewPrivate, nil); apierr != nil {
		return nil, apierr
	}

	notes, err := n.NoteRepo.FindByAuthorID(requester.User.ID)
	if err != nil {
		log.Errorf("failed to fetch notes of user %d: %v", requester.User.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := &contract.NoteListResponse{ObjectList: make([]*contract.NoteResponse, len(notes))}
	for i, note := range notes {
		resp.ObjectList[i] = toNoteResponse(note)
	}
	return resp, nil
}

// GetNote loads a note for its detail, edit or delete page.
func (n *DefaultNoteService) GetNote(requester policy.Requester, slug string, action policy.Action) (*contract.NoteResponse, apierror.ErrorResponse) {
	note, apierr := n.fetchOwned(requester, slug, action)
	if apierr != nil {
		return nil, apierr
	}
	return toNoteResponse(note), nil
}

func (n *DefaultNoteService) CreateNote(requester policy.Requester, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse) {
	if apierr := authorize(n.Guard, requester, policy.ActionCreate, nil); apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := n.Validate.Struct(req); valerr != nil {
		return nil, validationFailed(valerr)
	}

	slug, err := validation.DeriveOrValidateSlug(req.Title, req.Slug, n.slugExists(0))
	if err != nil {
		return nil, fromRuleError(err, "check note slug")
	}

	now := utils.NowUTC()
	note := &entity.Note{
		ID:        uid.Generate(),
		Title:     req.Title,
		Text:      req.Text,
		Slug:      slug,
		AuthorID:  requester.User.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := n.NoteRepo.CreateIfSlugFree(note)
	if err != nil {
		log.Errorf("failed to create note: %v", err)
		return nil, apierror.InternalServerError
	}

	if !created {
		return nil, apierror.FromRuleError(validation.NewSlugDuplicateError(slug))
	}
	return toNoteResponse(note), nil
}

func (n *DefaultNoteService) UpdateNote(requester policy.Requester, slug string, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse) {
	note, apierr := n.fetchOwned(requester, slug, policy.ActionEdit)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := n.Validate.Struct(req); valerr != nil {
		return nil, validationFailed(valerr)
	}

	newSlug, err := validation.DeriveOrValidateSlug(req.Title, req.Slug, n.slugExists(note.ID))
	if err != nil {
		return nil, fromRuleError(err, "check note slug")
	}

	note.Title = req.Title
	note.Text = req.Text
	note.Slug = newSlug
	note.UpdatedAt = utils.NowUTC()

	saved, err := n.NoteRepo.UpdateIfSlugFree(note)
	if err != nil {
		log.Errorf("failed to update note %d: %v", note.ID, err)
		return nil, apierror.InternalServerError
	}

	if !saved {
		return nil, apierror.FromRuleError(validation.NewSlugDuplicateError(newSlug))
	}
	return toNoteResponse(note), nil
}

func (n *DefaultNoteService) DeleteNote(requester policy.Requester, slug string) apierror.ErrorResponse {
	note, apierr := n.fetchOwned(requester, slug, policy.ActionDelete)
	if apierr != nil {
		return apierr
	}

	if err := n.NoteRepo.Delete(note); err != nil {
		log.Errorf("failed to delete note %d: %v", note.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// fetchOwned resolves the slug and checks the requester against the guard,
// a missing note and somebody else's note answer the same way.
func (n *DefaultNoteService) fetchOwned(requester policy.Requester, slug string, action policy.Action) (*entity.Note, apierror.ErrorResponse) {
	note, err := n.NoteRepo.FindBySlug(slug)
	if err != nil {
		log.Errorf("failed to fetch note '%s': %v", slug, err)
		return nil, apierror.InternalServerError
	}

	if apierr := authorize(n.Guard, requester, action, note); apierr != nil {
		return nil, apierr
	}
	return note, nil
}

func (n *DefaultNoteService) slugExists(excludeID int64) validation.SlugExists {
	return func(slug string) (bool, error) {
		return n.NoteRepo.ExistsBySlug(slug, excludeID)
	}
}
