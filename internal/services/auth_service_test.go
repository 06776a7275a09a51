package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"messaging_backend/internal/models"
	"messaging_backend/internal/services/dto"
	"messaging_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFromURL(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

// registerVerified registers and verifies a user, returning its id.
func (e *testEnv) registerVerified(t *testing.T, username, email, password string) string {
	t.Helper()
	ctx := context.Background()

	resp, err := e.auth.Register(ctx, nil, &dto.RegisterRequest{Username: username, Email: email, Password: password})
	require.NoError(t, err)

	require.NoError(t, e.auth.VerifyEmail(ctx, nil, tokenFromURL(t, e.mailer.last(t).url)))
	return resp.UserID
}

func TestRegister_CreatesPendingNormalUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, nil, &dto.RegisterRequest{
		Username: "alice", Email: "alice@x.com", Password: "Str0ng!Pw",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.UserID)

	user, ok := env.store.User(resp.UserID)
	require.True(t, ok)
	assert.False(t, user.IsVerified)
	assert.Equal(t, models.RoleNormalUser, user.RoleName())
	assert.NotEqual(t, "Str0ng!Pw", user.PasswordHash)
	require.NotNil(t, user.VerificationToken)
	assert.Len(t, *user.VerificationToken, 64)

	mail := env.mailer.last(t)
	assert.Equal(t, "verification", mail.kind)
	assert.Equal(t, "alice@x.com", mail.to)
	assert.Equal(t, "http://api.test/api/auth/verify-email?token="+*user.VerificationToken, mail.url)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, nil, &dto.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "Str0ng!Pw"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"same username", dto.RegisterRequest{Username: "alice", Email: "other@x.com", Password: "Another1!"}},
		{"same email", dto.RegisterRequest{Username: "alice2", Email: "alice@x.com", Password: "Another1!"}},
		{"both", dto.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "Str0ng!Pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.auth.Register(ctx, nil, &req)
			assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)
		})
	}
}

func TestRegister_EmailFailureKeepsAccount(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.mailer.err = errSMTP

	resp, err := env.auth.Register(context.Background(), nil, &dto.RegisterRequest{
		Username: "alice", Email: "alice@x.com", Password: "Str0ng!Pw",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrVerificationEmailFailed)
	assert.ErrorIs(t, err, errSMTP)

	require.NotNil(t, resp)
	_, ok := env.store.User(resp.UserID)
	assert.True(t, ok, "registration must not be rolled back")
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, nil, &dto.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "Str0ng!Pw"})
	require.NoError(t, err)
	token := tokenFromURL(t, env.mailer.last(t).url)

	require.NoError(t, env.auth.VerifyEmail(ctx, nil, token))

	user, _ := env.store.User(resp.UserID)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken)

	assert.ErrorIs(t, env.auth.VerifyEmail(ctx, nil, token), apperrors.ErrInvalidVerificationToken)
	assert.ErrorIs(t, env.auth.VerifyEmail(ctx, nil, ""), apperrors.ErrInvalidVerificationToken)
	assert.ErrorIs(t, env.auth.VerifyEmail(ctx, nil, "deadbeef"), apperrors.ErrInvalidVerificationToken)
}

func TestLogin_Failures(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "bob", "bob@x.com", "B0bPassword")
	_, err := env.auth.Register(ctx, nil, &dto.RegisterRequest{Username: "carol", Email: "carol@x.com", Password: "CarolPass1"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		req      dto.LoginRequest
		expected *apperrors.AppError
	}{
		{"unknown user", dto.LoginRequest{Username: "nobody", Password: "whatever1"}, apperrors.ErrInvalidCredentials},
		{"wrong password", dto.LoginRequest{Username: "bob", Password: "wrong-pass"}, apperrors.ErrInvalidCredentials},
		{"unverified", dto.LoginRequest{Username: "carol", Password: "CarolPass1"}, apperrors.ErrEmailNotVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := env.auth.Login(ctx, nil, &req)
			assert.Nil(t, resp)
			require.ErrorIs(t, err, tt.expected)

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, 401, appErr.HTTPCode)
		})
	}

	users, _, err := env.store.Users().List(nil, 10, 0)
	require.NoError(t, err)
	for _, u := range users {
		assert.Zero(t, env.store.RefreshTokenCount(u.ID), "no session for %s", u.Username)
	}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")

	resp, err := env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "alice", Password: "Str0ng!Pw"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, dto.UserSummary{
		ID: userID, Username: "alice", Email: "alice@x.com", Role: models.RoleNormalUser,
	}, resp.User)

	claims, err := env.tokens.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleNormalUser, claims.Role)
	assert.True(t, claims.IsVerified)

	assert.Equal(t, 1, env.store.RefreshTokenCount(userID))
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	login, err := env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "alice", Password: "Str0ng!Pw"})
	require.NoError(t, err)

	require.NoError(t, env.users.ChangeRole(ctx, nil, userID, models.RoleAdmin))

	refreshed, err := env.auth.Refresh(ctx, nil, login.RefreshToken)
	require.NoError(t, err)

	claims, err := env.tokens.VerifyAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, userID, claims.UserID)

	// Not rotated: the same refresh token keeps working.
	_, err = env.auth.Refresh(ctx, nil, login.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_InvalidOrExpired(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	login, err := env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "alice", Password: "Str0ng!Pw"})
	require.NoError(t, err)

	_, err = env.auth.Refresh(ctx, nil, "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	env.store.ExpireRefreshToken(login.RefreshToken)
	_, err = env.auth.Refresh(ctx, nil, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefresh_ExpiryComparedWithClock(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	login, err := env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "alice", Password: "Str0ng!Pw"})
	require.NoError(t, err)

	env.auth.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	_, err = env.auth.Refresh(ctx, nil, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestLogout_Idempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	login, err := env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "alice", Password: "Str0ng!Pw"})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, nil, login.RefreshToken))
	require.NoError(t, env.auth.Logout(ctx, nil, login.RefreshToken))
	require.NoError(t, env.auth.Logout(ctx, nil, ""))
	assert.Zero(t, env.store.RefreshTokenCount(userID))

	_, err = env.auth.Refresh(ctx, nil, login.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	// The access token outlives the session.
	_, err = env.tokens.VerifyAccessToken(login.AccessToken)
	assert.NoError(t, err)
}

func TestPasswordReset_Flow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	_, err := env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "alice", Password: "Str0ng!Pw"})
	require.NoError(t, err)

	require.NoError(t, env.auth.RequestPasswordReset(ctx, nil, "alice@x.com"))
	mail := env.mailer.last(t)
	assert.Equal(t, "reset", mail.kind)
	token := tokenFromURL(t, mail.url)

	require.NoError(t, env.auth.ResetPassword(ctx, nil, &dto.ResetPasswordRequest{Token: token, NewPassword: "N3wPassword"}))
	assert.Zero(t, env.store.RefreshTokenCount(userID), "sessions revoked")

	_, err = env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "alice", Password: "Str0ng!Pw"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "alice", Password: "N3wPassword"})
	assert.NoError(t, err)

	err = env.auth.ResetPassword(ctx, nil, &dto.ResetPasswordRequest{Token: token, NewPassword: "Again1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}

func TestPasswordReset_UnknownEmailAndExpiry(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.auth.RequestPasswordReset(ctx, nil, "ghost@x.com"))

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	require.NoError(t, env.auth.RequestPasswordReset(ctx, nil, "alice@x.com"))
	token := tokenFromURL(t, env.mailer.last(t).url)

	env.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	err := env.auth.ResetPassword(ctx, nil, &dto.ResetPasswordRequest{Token: token, NewPassword: "N3wPassword"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}
