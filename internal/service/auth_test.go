package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func registerInput(username string) service.RegisterInput {
	return service.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	}
}

func TestRegister(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	user, err := s.auth.Register(ctx, registerInput("alice"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		in := registerInput("alice2")
		in.Email = "alice@example.com"
		_, err := s.auth.Register(ctx, in)
		require.ErrorIs(t, err, service.ErrAlreadyExists)
		var domainErr *service.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "email", domainErr.Field)
	})

	t.Run("duplicate username", func(t *testing.T) {
		in := registerInput("alice")
		in.Email = "other@example.com"
		_, err := s.auth.Register(ctx, in)
		assert.ErrorIs(t, err, service.ErrAlreadyExists)
	})

	t.Run("restricted username", func(t *testing.T) {
		_, err := s.auth.Register(ctx, registerInput("me"))
		assert.ErrorIs(t, err, service.ErrRestrictedUsername)
	})

	t.Run("invalid username characters", func(t *testing.T) {
		_, err := s.auth.Register(ctx, registerInput("bad name!"))
		assert.ErrorIs(t, err, service.ErrInvalidValue)
	})

	t.Run("missing fields", func(t *testing.T) {
		in := registerInput("bob")
		in.FirstName = ""
		_, err := s.auth.Register(ctx, in)
		require.ErrorIs(t, err, service.ErrInvalidValue)
		var domainErr *service.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "first_name", domainErr.Field)
	})
}

func TestLoginAndTokens(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, s.db, "alice")

	_, _, err := s.auth.Login(ctx, user.Email, "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = s.auth.Login(ctx, "nobody@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	token, loggedIn, err := s.auth.Login(ctx, user.Email, testhelpers.TestPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := s.auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, err = s.auth.ValidateToken(ctx, token+"x")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	require.NoError(t, s.auth.Logout(ctx, claims))
	_, err = s.auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestTokensFromOtherSecretsAreRejected(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, s.db, "alice")

	foreign := service.NewAuthService(s.db, "another-secret", 0, nil, zap.NewNop())
	token, err := foreign.GenerateToken(user)
	require.NoError(t, err)

	_, err = s.auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestIsRestrictedUsername(t *testing.T) {
	assert.True(t, service.IsRestrictedUsername("me"))
	assert.True(t, service.IsRestrictedUsername("ME"))
	assert.False(t, service.IsRestrictedUsername("meg"))
}
