package cognitoclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// User is the default user struct for all basic Cognito operations.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserConfirmation is the default structure for approving the sign-up code.
type UserConfirmation struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// SignUpResult carries the "sub" (the UUID) of the new user.
type SignUpResult struct {
	Sub       string
	Confirmed bool
}

// AuthCreate represents the response of Cognito sign in approval.
type AuthCreate struct {
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int32  `json:"expires_in"`
}

type CognitoInterface interface {
	SignUp(ctx context.Context, user *User) (*SignUpResult, error)
	SignIn(ctx context.Context, user *User) (*AuthCreate, error)
	GlobalSignOut(ctx context.Context, accessToken string) error
	ConfirmAccount(ctx context.Context, user *UserConfirmation) error
}

type cognitoClient struct {
	client      *cognito.Client
	appClientID string
}

func NewCognitoClient(ctx context.Context, region, appClientID string) (CognitoInterface, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &cognitoClient{
		client:      cognito.NewFromConfig(cfg),
		appClientID: appClientID,
	}, nil
}

// SignUp creates a new user row on Cognito and returns its "sub"
func (c *cognitoClient) SignUp(ctx context.Context, user *User) (*SignUpResult, error) {
	out, err := c.client.SignUp(ctx, &cognito.SignUpInput{
		ClientId: aws.String(c.appClientID),
		Username: aws.String(user.Username),
		Password: aws.String(user.Password),
	})
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Sub: aws.ToString(out.UserSub), Confirmed: out.UserConfirmed}, nil
}

// GlobalSignOut signs out all the user session in all devices.
// In other words, it invalidates all the existing JWT tokens
func (c *cognitoClient) GlobalSignOut(ctx context.Context, accessToken string) error {
	_, err := c.client.GlobalSignOut(ctx, &cognito.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return err
}

func (c *cognitoClient) ConfirmAccount(ctx context.Context, user *UserConfirmation) error {
	_, err := c.client.ConfirmSignUp(ctx, &cognito.ConfirmSignUpInput{
		Username:         aws.String(user.Username),
		ConfirmationCode: aws.String(user.Code),
		ClientId:         aws.String(c.appClientID),
	})
	return err
}

// SignIn signs the user in... pretty straightforward
func (c *cognitoClient) SignIn(ctx context.Context, user *User) (*AuthCreate, error) {
	result, err := c.client.InitiateAuth(ctx, &cognito.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": user.Username,
			"PASSWORD": user.Password,
		},
		ClientId: aws.String(c.appClientID),
	})
	if err != nil {
		return nil, err
	}

	// Set when Cognito asks for another challenge (MFA, new password...)
	if result.AuthenticationResult == nil {
		return nil, errors.New("cognito returned no authentication result, challenge: " + string(result.ChallengeName))
	}

	auth := result.AuthenticationResult
	return &AuthCreate{
		IDToken:     aws.ToString(auth.IdToken),
		AccessToken: aws.ToString(auth.AccessToken),
		ExpiresIn:   auth.ExpiresIn,
	}, nil
}
