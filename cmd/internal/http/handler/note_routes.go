package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

type NoteService interface {
	AuthorizePage(requester policy.Requester) apierror.ErrorResponse
	ListNotes(requester policy.Requester) (*contract.NoteListResponse, apierror.ErrorResponse)
	GetNote(requester policy.Requester, slug string, action policy.Action) (*contract.NoteResponse, apierror.ErrorResponse)
	CreateNote(requester policy.Requester, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse)
	UpdateNote(requester policy.Requester, slug string, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse)
	DeleteNote(requester policy.Requester, slug string) apierror.ErrorResponse
}

type DefaultNoteRoute struct {
	NoteService NoteService
}

func NewNoteDefault(noteService NoteService) *DefaultNoteRoute {
	return &DefaultNoteRoute{NoteService: noteService}
}

func (n *DefaultNoteRoute) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, &contract.NotesHomeResponse{
		AddURL:  contract.NotesAddURL,
		ListURL: contract.NotesListURL,
	})
}

func (n *DefaultNoteRoute) List(c echo.Context) error {
	notes, apierr := n.NoteService.ListNotes(utils.GetRequester(c))
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusOK, notes)
}

func (n *DefaultNoteRoute) AddForm(c echo.Context) error {
	if apierr := n.NoteService.AuthorizePage(utils.GetRequester(c)); apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusOK, &contract.NotePageResponse{Form: contract.NewNoteForm(contract.NotesAddURL, nil)})
}

func (n *DefaultNoteRoute) Create(c echo.Context) error {
	requester := utils.GetRequester(c)
	var req contract.NoteRequest
	if err := c.Bind(&req); err != nil {
		return malformedBody(c, n.NoteService.AuthorizePage(requester))
	}

	if _, apierr := n.NoteService.CreateNote(requester, &req); apierr != nil {
		return respondError(c, apierr)
	}
	return c.Redirect(http.StatusFound, contract.NotesDoneURL)
}

func (n *DefaultNoteRoute) Done(c echo.Context) error {
	if apierr := n.NoteService.AuthorizePage(utils.GetRequester(c)); apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Done", "list_url": contract.NotesListURL})
}

func (n *DefaultNoteRoute) Detail(c echo.Context) error {
	note, apierr := n.NoteService.GetNote(utils.GetRequester(c), slugParam(c), policy.ActionRead)
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusOK, &contract.NotePageResponse{Object: note})
}

func (n *DefaultNoteRoute) EditForm(c echo.Context) error {
	slug := slugParam(c)
	note, apierr := n.NoteService.GetNote(utils.GetRequester(c), slug, policy.ActionEdit)
	if apierr != nil {
		return respondError(c, apierr)
	}

	return c.JSON(http.StatusOK, &contract.NotePageResponse{
		Object: note,
		Form:   contract.NewNoteForm(contract.NoteEditURL(slug), note),
	})
}

func (n *DefaultNoteRoute) Edit(c echo.Context) error {
	requester := utils.GetRequester(c)
	slug := slugParam(c)
	var req contract.NoteRequest
	if err := c.Bind(&req); err != nil {
		_, denied := n.NoteService.GetNote(requester, slug, policy.ActionEdit)
		return malformedBody(c, denied)
	}

	if _, apierr := n.NoteService.UpdateNote(requester, slug, &req); apierr != nil {
		return respondError(c, apierr)
	}
	return c.Redirect(http.StatusFound, contract.NotesDoneURL)
}

func (n *DefaultNoteRoute) DeleteForm(c echo.Context) error {
	note, apierr := n.NoteService.GetNote(utils.GetRequester(c), slugParam(c), policy.ActionDelete)
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusOK, &contract.NotePageResponse{Object: note})
}

// Delete serves both the confirmation form POST and plain DELETE requests.
func (n *DefaultNoteRoute) Delete(c echo.Context) error {
	if apierr := n.NoteService.DeleteNote(utils.GetRequester(c), slugParam(c)); apierr != nil {
		return respondError(c, apierr)
	}
	return c.Redirect(http.StatusFound, contract.NotesDoneURL)
}

func slugParam(c echo.Context) string {
	return strings.TrimSpace(c.Param("slug"))
}
