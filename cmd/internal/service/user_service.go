package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/domain/entity"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
	"newsnotes/cmd/internal/utils/uid"
)

type UserRepository interface {
	FindActiveBySub(sub string) (*entity.User, error)
	FindByUsername(username string) (*entity.User, error)
	ExistsByUsername(username string) (bool, error)
	Create(user *entity.User) error
	Save(user *entity.User) error
}

type UserService struct {
	UserRepo UserRepository
	Auth     Authenticator
	Validate *validator.Validate
}

func NewUserService(userRepo UserRepository, auth Authenticator, validate *validator.Validate) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Auth:     auth,
		Validate: validate,
	}
}

// Signup registers the user with the identity provider first, then stores
// our own row.
func (u *UserService) Signup(ctx context.Context, req *contract.SignupRequest) (*contract.SignupResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, validationFailed(err)
	}

	taken, err := u.UserRepo.ExistsByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return nil, apierror.InternalServerError
	}

	if taken {
		return nil, apierror.UsernameTakenError
	}

	identity, apierr := u.Auth.SignUp(ctx, req.Username, req.Password)
	if apierr != nil {
		return nil, apierr
	}

	// This is our user, in our database <3
	now := utils.NowUTC()
	user := &entity.User{
		ID:           uid.Generate(),
		SubUUID:      identity.Sub,
		Username:     req.Username,
		PasswordHash: identity.PasswordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = u.UserRepo.Create(user); err != nil {
		log.Errorf("failed to create user '%s': %v", req.Username, err)
		return nil, apierror.InternalServerError
	}

	return &contract.SignupResponse{
		User:                 toUserResponse(user),
		ConfirmationRequired: !identity.Confirmed,
	}, nil
}

func (u *UserService) ConfirmSignup(ctx context.Context, req *contract.ConfirmSignupRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return validationFailed(err)
	}

	user, err := u.UserRepo.FindByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return apierror.InternalServerError
	}

	if user == nil {
		return apierror.IDPUserNotFoundError
	}
	return u.Auth.Confirm(ctx, req.Username, req.Code)
}

// Login checks the credentials and opens a new session. Unknown and inactive
// users get the same answer as a wrong password.
func (u *UserService) Login(ctx context.Context, req *contract.LoginRequest) (*Session, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, validationFailed(err)
	}

	user, err := u.UserRepo.FindByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}

	if user == nil || !user.Active {
		return nil, apierror.CredentialsMismatchError
	}
	return u.Auth.SignIn(ctx, user, req.Password)
}

func (u *UserService) Logout(ctx context.Context, accessToken string) apierror.ErrorResponse {
	return u.Auth.SignOut(ctx, accessToken)
}

// Describe renders the current user, nil for anonymous requesters.
func (u *UserService) Describe(user *entity.User) *contract.UserResponse {
	if user == nil {
		return nil
	}
	return toUserResponse(user)
}
