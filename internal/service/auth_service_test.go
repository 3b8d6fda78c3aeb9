package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/testutil"
	"academy_backend/internal/util"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	user := testutil.User(t, store, model.Trainee)
	auth := newAuthService(t, NewUserService(store, &recordingMailer{}, "Academy"))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", user.Email, "nope"},
		{"unknown email", "ghost@example.com", testutil.Password},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(ctx, LoginRequest{Email: tt.email, Password: tt.password})
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}

	resp, err := auth.Login(ctx, LoginRequest{Email: "  " + user.Email, Password: testutil.Password})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	user := testutil.User(t, store, model.Trainer)
	auth := newAuthService(t, NewUserService(store, &recordingMailer{}, "Academy"))

	resp, err := auth.Login(ctx, LoginRequest{Email: user.Email, Password: testutil.Password})
	require.NoError(t, err)
	claims, err := util.ParseJWT(resp.Token, "test-secret")
	require.NoError(t, err)

	revoked, err := auth.Tokens.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, auth.Logout(ctx, claims))
	revoked, err = auth.Tokens.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	me, err := auth.CurrentUser(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, me.Email)
}

func TestMemoryTokenStoreExpires(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokenStore(nil)

	require.NoError(t, tokens.Revoke(ctx, "short", time.Millisecond))
	require.NoError(t, tokens.Revoke(ctx, "expired", -time.Second))
	time.Sleep(5 * time.Millisecond)

	for _, id := range []string{"short", "expired", "never-seen"} {
		revoked, err := tokens.IsRevoked(ctx, id)
		require.NoError(t, err)
		assert.False(t, revoked, id)
	}
}
