package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsnotes/cmd/internal/contract"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/apierror"
)

const validPassword = "Str0ng!pass"

func TestSignupAndLoginWithLocalAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, apierr := f.users.Signup(ctx, &contract.SignupRequest{Username: " alice ", Password: validPassword})
	require.Nil(t, apierr)
	assert.Equal(t, "alice", resp.User.Username)
	assert.False(t, resp.ConfirmationRequired)

	stored, err := f.userRepo.FindByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, validPassword, stored.PasswordHash)
	assert.NotEmpty(t, stored.SubUUID)

	session, apierr := f.users.Login(ctx, &contract.LoginRequest{Username: "alice", Password: validPassword})
	require.Nil(t, apierr)
	assert.NotEmpty(t, session.Token)
	assert.Empty(t, session.AccessToken)

	tokens, err := utils.NewHMACTokens(testSecret, 0)
	require.NoError(t, err)
	data, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.SubUUID, data.Sub)
	assert.Equal(t, "alice", data.Username)
}

func TestSignupRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "taken")

	_, apierr := f.users.Signup(ctx, &contract.SignupRequest{Username: "taken", Password: validPassword})
	assert.Equal(t, apierror.UsernameTakenError, apierr)

	invalid := []*contract.SignupRequest{
		{Username: "a", Password: validPassword},
		{Username: "has space", Password: validPassword},
		{Username: "bob", Password: "short"},
		{Username: "bob", Password: "nouppercase1!"},
		{Username: "bob", Password: "NoSpecialChar1"},
	}
	for _, req := range invalid {
		_, apierr := f.users.Signup(ctx, req)
		_, ok := apierr.(*apierror.StructuredError)
		assert.True(t, ok, "expected form errors for %+v", req)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, apierr := f.users.Signup(ctx, &contract.SignupRequest{Username: "alice", Password: validPassword})
	require.Nil(t, apierr)

	_, apierr = f.users.Login(ctx, &contract.LoginRequest{Username: "alice", Password: "Wr0ng!pass"})
	assert.Equal(t, apierror.CredentialsMismatchError, apierr)

	_, apierr = f.users.Login(ctx, &contract.LoginRequest{Username: "nobody", Password: validPassword})
	assert.Equal(t, apierror.CredentialsMismatchError, apierr)

	stored, err := f.userRepo.FindByUsername("alice")
	require.NoError(t, err)
	stored.Active = false
	require.NoError(t, f.userRepo.Save(stored))

	_, apierr = f.users.Login(ctx, &contract.LoginRequest{Username: "alice", Password: validPassword})
	assert.Equal(t, apierror.CredentialsMismatchError, apierr)
}

func TestConfirmSignupIsUnsupportedLocally(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	apierr := f.users.ConfirmSignup(context.Background(), &contract.ConfirmSignupRequest{Username: "alice", Code: "123456"})
	assert.Equal(t, apierror.ConfirmationUnsupportedError, apierr)

	apierr = f.users.ConfirmSignup(context.Background(), &contract.ConfirmSignupRequest{Username: "nobody", Code: "123456"})
	assert.Equal(t, apierror.IDPUserNotFoundError, apierr)
}
