package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpress/pkg/helpers"
)

func newAccountService() (*AccountService, *fakeUserRepo) {
	users := newFakeUserRepo()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return NewAccountService(users, jwt, nil, testLogger()), users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a regular account", func(t *testing.T) {
		svc, _ := newAccountService()

		u, err := svc.Register(ctx, "a@example.com", "password123", "Alice")
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.False(t, u.Admin)
		assert.NotEqual(t, "password123", u.Password)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc, _ := newAccountService()

		_, err := svc.Register(ctx, "a@example.com", "password123", "Alice")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "a@example.com", "otherpass456", "Imposter")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccountService()

	registered, err := svc.Register(ctx, "a@example.com", "password123", "Alice")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "a@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "a@example.com", "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccountService()

	registered, err := svc.Register(ctx, "a@example.com", "password123", "Alice")
	require.NoError(t, err)

	u, pair, err := svc.Login(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.AccessTokenExpiry.Before(pair.RefreshTokenExpiry))

	t.Run("refresh with a valid token", func(t *testing.T) {
		next, userID, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, userID)
		assert.NotEmpty(t, next.AccessToken)
	})

	t.Run("refresh with garbage fails", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccountService()

	registered, err := svc.Register(ctx, "a@example.com", "password123", "Alice")
	require.NoError(t, err)

	u, err := svc.GetProfile(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)

	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
