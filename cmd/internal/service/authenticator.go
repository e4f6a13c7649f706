package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"newsnotes/cmd/internal/domain/entity"
	cognitoclient "newsnotes/cmd/internal/infrastructure/aws/cognito"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

// Identity is what the identity provider knows about a freshly signed up user.
type Identity struct {
	Sub          string
	PasswordHash string
	Confirmed    bool
}

// Session is handed to the client after a successful sign in. AccessToken is
// only set by providers able to revoke sessions.
type Session struct {
	Token       string
	AccessToken string
	ExpiresAt   time.Time
}

type Authenticator interface {
	SignUp(ctx context.Context, username, password string) (*Identity, apierror.ErrorResponse)
	Confirm(ctx context.Context, username, code string) apierror.ErrorResponse
	SignIn(ctx context.Context, user *entity.User, password string) (*Session, apierror.ErrorResponse)
	SignOut(ctx context.Context, accessToken string) apierror.ErrorResponse
}

// LocalAuthenticator keeps bcrypt hashes in our own database and issues
// HS256 session tokens.
type LocalAuthenticator struct {
	Tokens *utils.HMACTokens
	Cost   int
}

func NewLocalAuthenticator(tokens *utils.HMACTokens) *LocalAuthenticator {
	return &LocalAuthenticator{Tokens: tokens, Cost: bcrypt.DefaultCost}
}

func (l *LocalAuthenticator) SignUp(_ context.Context, _, password string) (*Identity, apierror.ErrorResponse) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.Cost)
	if err != nil {
		log.Errorf("failed to hash password: %v", err)
		return nil, apierror.InternalServerError
	}

	return &Identity{
		Sub:          uuid.NewString(),
		PasswordHash: string(hash),
		Confirmed:    true,
	}, nil
}

func (l *LocalAuthenticator) Confirm(context.Context, string, string) apierror.ErrorResponse {
	return apierror.ConfirmationUnsupportedError
}

func (l *LocalAuthenticator) SignIn(_ context.Context, user *entity.User, password string) (*Session, apierror.ErrorResponse) {
	if user.PasswordHash == "" {
		return nil, apierror.CredentialsMismatchError
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apierror.CredentialsMismatchError
	}

	token, exp, err := l.Tokens.Issue(user.SubUUID, user.Username)
	if err != nil {
		log.Errorf("failed to issue session for user %d: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return &Session{Token: token, ExpiresAt: exp}, nil
}

// SignOut has nothing to revoke, dropping the cookie ends a local session.
func (l *LocalAuthenticator) SignOut(context.Context, string) apierror.ErrorResponse {
	return nil
}

// CognitoAuthenticator delegates credentials to a Cognito user pool. The
// session token is the Cognito ID token.
type CognitoAuthenticator struct {
	Cognito cognitoclient.CognitoInterface
}

func NewCognitoAuthenticator(client cognitoclient.CognitoInterface) *CognitoAuthenticator {
	return &CognitoAuthenticator{Cognito: client}
}

func (c *CognitoAuthenticator) SignUp(ctx context.Context, username, password string) (*Identity, apierror.ErrorResponse) {
	out, err := c.Cognito.SignUp(ctx, &cognitoclient.User{Username: username, Password: password})
	if err != nil {
		return nil, utils.MapCognitoError(err)
	}
	return &Identity{Sub: out.Sub, Confirmed: out.Confirmed}, nil
}

func (c *CognitoAuthenticator) Confirm(ctx context.Context, username, code string) apierror.ErrorResponse {
	err := c.Cognito.ConfirmAccount(ctx, &cognitoclient.UserConfirmation{Username: username, Code: code})
	if err != nil {
		return utils.MapCognitoError(err)
	}
	return nil
}

func (c *CognitoAuthenticator) SignIn(ctx context.Context, user *entity.User, password string) (*Session, apierror.ErrorResponse) {
	auth, err := c.Cognito.SignIn(ctx, &cognitoclient.User{Username: user.Username, Password: password})
	if err != nil {
		return nil, utils.MapCognitoError(err)
	}

	return &Session{
		Token:       auth.IDToken,
		AccessToken: auth.AccessToken,
		ExpiresAt:   time.Now().UTC().Add(time.Duration(auth.ExpiresIn) * time.Second),
	}, nil
}

func (c *CognitoAuthenticator) SignOut(ctx context.Context, accessToken string) apierror.ErrorResponse {
	if accessToken == "" {
		return nil
	}

	if err := c.Cognito.GlobalSignOut(ctx, accessToken); err != nil {
		return utils.MapCognitoError(err)
	}
	return nil
}
