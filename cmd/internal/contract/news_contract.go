package contract

import "fmt"

type NewsResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Date  string `json:"date"`
}

type HomeResponse struct {
	ObjectList []*NewsResponse `json:"object_list"`
}

type NewsDetailResponse struct {
	News     *NewsResponse      `json:"news"`
	Comments []*CommentResponse `json:"comments"`
	// Form is only present for authenticated users.
	Form *Form `json:"form,omitempty"`
}

type AuthorResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type CommentResponse struct {
	ID        int64           `json:"id"`
	NewsID    int64           `json:"news_id"`
	Author    *AuthorResponse `json:"author"`
	Text      string          `json:"text"`
	CreatedAt string          `json:"created"`
	UpdatedAt string          `json:"updated_at"`
}

type CommentRequest struct {
	Text string `json:"text" form:"text" validate:"required"`
}

type CommentPageResponse struct {
	Comment *CommentResponse `json:"comment"`
	Form    *Form            `json:"form,omitempty"`
}

// ImportNewsItem is one element of a news import file. Date is RFC 3339 or
// YYYY-MM-DD and defaults to the import time.
type ImportNewsItem struct {
	Title string `json:"title" validate:"required,max=255"`
	Text  string `json:"text" validate:"required"`
	Date  string `json:"date"`
}

func NewsURL(newsID int64) string {
	return fmt.Sprintf("/news/%d/", newsID)
}

// NewsCommentsURL points at the comments section of a news detail page.
func NewsCommentsURL(newsID int64) string {
	return NewsURL(newsID) + "#comments"
}

func NewCommentForm(action, text string) *Form {
	return &Form{
		Method: "POST",
		Action: action,
		Fields: []*FormField{
			{Name: "text", Type: "textarea", Required: true, Value: text},
		},
	}
}
