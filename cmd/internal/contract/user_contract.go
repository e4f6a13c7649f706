package contract

type SignupRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=2,max=150,nospaces"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=64,hasspecial,hasdigit,hasupper,haslower"`
}

type ConfirmSignupRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=2,max=150"`
	Code     string `json:"code" form:"code" validate:"required,min=1,max=8"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=150"`
	Password string `json:"password" form:"password" validate:"required,max=64"`
	Next     string `json:"next" form:"next" query:"next"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type SignupResponse struct {
	User                 *UserResponse `json:"user"`
	ConfirmationRequired bool          `json:"confirmation_required"`
}

type AuthPageResponse struct {
	User *UserResponse `json:"user,omitempty"`
	Form *Form         `json:"form,omitempty"`
}

func NewSignupForm(action string) *Form {
	return &Form{
		Method: "POST",
		Action: action,
		Fields: []*FormField{
			{Name: "username", Type: "text", Required: true, MaxLength: 150},
			{Name: "password", Type: "password", Required: true, MaxLength: 64},
		},
	}
}

func NewLoginForm(action, next string) *Form {
	return &Form{
		Method: "POST",
		Action: action,
		Fields: []*FormField{
			{Name: "username", Type: "text", Required: true, MaxLength: 150},
			{Name: "password", Type: "password", Required: true, MaxLength: 64},
			{Name: "next", Type: "hidden", Value: next},
		},
	}
}
