package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/service"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

const (
	signupURL = "/auth/signup/"
	loginURL  = "/auth/login/"
)

type UserService interface {
	Signup(ctx context.Context, req *contract.SignupRequest) (*contract.SignupResponse, apierror.ErrorResponse)
	ConfirmSignup(ctx context.Context, req *contract.ConfirmSignupRequest) apierror.ErrorResponse
	Login(ctx context.Context, req *contract.LoginRequest) (*service.Session, apierror.ErrorResponse)
	Logout(ctx context.Context, accessToken string) apierror.ErrorResponse
	Describe(user *entity.User) *contract.UserResponse
}

type DefaultUserRoute struct {
	UserService   UserService
	SecureCookies bool
}

func NewUserDefault(userService UserService, secureCookies bool) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService, SecureCookies: secureCookies}
}

func (u *DefaultUserRoute) SignupForm(c echo.Context) error {
	return c.JSON(http.StatusOK, &contract.AuthPageResponse{
		User: u.UserService.Describe(utils.GetRequester(c).User),
		Form: contract.NewSignupForm(signupURL),
	})
}

func (u *DefaultUserRoute) Signup(c echo.Context) error {
	var req contract.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := u.UserService.Signup(c.Request().Context(), &req)
	if apierr != nil {
		return respondError(c, apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (u *DefaultUserRoute) ConfirmSignup(c echo.Context) error {
	var req contract.ConfirmSignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := u.UserService.ConfirmSignup(c.Request().Context(), &req); apierr != nil {
		return respondError(c, apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (u *DefaultUserRoute) LoginForm(c echo.Context) error {
	return c.JSON(http.StatusOK, &contract.AuthPageResponse{
		User: u.UserService.Describe(utils.GetRequester(c).User),
		Form: contract.NewLoginForm(loginURL, c.QueryParam("next")),
	})
}

// Login opens a session and sends the user back to where the login was
// required. Only local paths are accepted as targets.
func (u *DefaultUserRoute) Login(c echo.Context) error {
	var req contract.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if req.Next == "" {
		req.Next = c.QueryParam("next")
	}

	session, apierr := u.UserService.Login(c.Request().Context(), &req)
	if apierr != nil {
		return respondError(c, apierr)
	}

	c.SetCookie(utils.NewSessionCookie(session.Token, session.ExpiresAt, u.SecureCookies))
	if session.AccessToken != "" {
		c.SetCookie(utils.NewAccessCookie(session.AccessToken, session.ExpiresAt, u.SecureCookies))
	}
	return c.Redirect(http.StatusFound, safeNext(req.Next))
}

func (u *DefaultUserRoute) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(utils.AccessCookie); err == nil && cookie.Value != "" {
		if apierr := u.UserService.Logout(c.Request().Context(), cookie.Value); apierr != nil {
			// The local cookies go away anyway
			log.Warnf("failed to revoke session at the identity provider: %+v", apierr)
		}
	}

	c.SetCookie(utils.ExpiredCookie(utils.SessionCookie, u.SecureCookies))
	c.SetCookie(utils.ExpiredCookie(utils.AccessCookie, u.SecureCookies))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}
