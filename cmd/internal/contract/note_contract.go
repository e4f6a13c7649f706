package contract

const (
	NotesDoneURL = "/notes/done/"
	NotesAddURL  = "/notes/add/"
	NotesListURL = "/notes/list/"
)

type NoteResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Slug      string `json:"slug"`
	AuthorID  int64  `json:"author_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NotesHomeResponse is the public entry point of the notes section.
type NotesHomeResponse struct {
	AddURL  string `json:"add_url"`
	ListURL string `json:"list_url"`
}

type NoteListResponse struct {
	ObjectList []*NoteResponse `json:"object_list"`
}

type NotePageResponse struct {
	Object *NoteResponse `json:"object,omitempty"`
	Form   *Form         `json:"form,omitempty"`
}

// NoteRequest serves both creation and edition. An empty slug is derived
// from the title.
type NoteRequest struct {
	Title string `json:"title" form:"title" validate:"required,max=100"`
	Text  string `json:"text" form:"text" validate:"required"`
	Slug  string `json:"slug" form:"slug" validate:"omitempty,max=100,slug"`
}

func NoteEditURL(slug string) string {
	return "/notes/edit/" + slug + "/"
}

func NewNoteForm(action string, note *NoteResponse) *Form {
	var title, text, slug string
	if note != nil {
		title, text, slug = note.Title, note.Text, note.Slug
	}

	return &Form{
		Method: "POST",
		Action: action,
		Fields: []*FormField{
			{Name: "title", Type: "text", Required: true, MaxLength: 100, Value: title},
			{Name: "text", Type: "textarea", Required: true, Value: text},
			{Name: "slug", Type: "text", MaxLength: 100, Value: slug},
		},
	}
}
