package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"newsnotes/cmd/internal/domain/validation"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

// RedirectError is not an error for the user, it tells the handler to send
// the client somewhere else instead of rendering a body.
type RedirectError struct {
	Location string
	Status   int
}

func (r *RedirectError) Code() int {
	return r.Status
}

var (
	MalformedBodyError  = NewSimple(400, "Malformed request body")
	InternalServerError = NewSimple(500, "Internal server error")

	NotFoundError  = NewSimple(404, "Resource not found")
	InvalidIDError = NewSimple(400, "The provided ID is invalid, IDs are int64 > 0")

	/*
	 * Used for authentications
	 */
	CredentialsMismatchError     = NewSimple(400, "Credentials mismatch")
	UsernameTakenError           = NewSimple(400, "Username already exists")
	IDPInvalidPasswordError      = NewSimple(400, "Provided password does not meet requirements")
	IDPUserNotFoundError         = NewSimple(404, "User not found")
	IDPUserNotConfirmedError     = NewSimple(400, "User is not confirmed yet")
	IDPConfirmCodeMismatchError  = NewSimple(400, "Confirmation code mismatch")
	IDPConfirmCodeExpiredError   = NewSimple(400, "Confirmation code has expired")
	IDPInvalidParameterError     = NewSimple(400, "Invalid parameters provided, the user is likely already verified")
	ConfirmationUnsupportedError = NewSimple(400, "Account confirmation is not required by this server")
)

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "slug":
			problems[field] = append(problems[field], "Value must only contain latin letters, numbers, underscores or hyphens")
		case "nospaces":
			problems[field] = append(problems[field], "Value must not contain whitespaces")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

// FromRuleError converts a failed validation rule into the form error body.
func FromRuleError(verr *validation.ValidationError) *StructuredError {
	resp := NewStructured(http.StatusBadRequest)
	resp.Add(verr.Field, verr.Message)
	return resp
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewStructured(code int) *StructuredError {
	return &StructuredError{
		Errors: make(map[string][]string),
		Status: code,
	}
}

func NewRedirect(location string) *RedirectError {
	return &RedirectError{Location: location, Status: http.StatusFound}
}

func NewMissingParamError(name string) *APIError {
	return NewSimple(http.StatusBadRequest, "Missing required parameter '%s'", name)
}
