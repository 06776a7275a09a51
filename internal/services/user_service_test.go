package services

import (
	"context"
	"testing"

	"messaging_backend/internal/models"
	"messaging_backend/internal/services/dto"
	"messaging_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSuperAdmin_OnlyOnce(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.users.EnsureSuperAdmin(ctx, nil, "root", "root@x.com", "R00tPassword")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.users.EnsureSuperAdmin(ctx, nil, "root2", "root2@x.com", "R00tPassword")
	require.NoError(t, err)
	assert.False(t, created)

	login, err := env.auth.Login(ctx, nil, &dto.LoginRequest{Username: "root", Password: "R00tPassword"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, login.User.Role)
}

func TestChangeRole_Errors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	userID := env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")

	assert.ErrorIs(t, env.users.ChangeRole(ctx, nil, uuid.NewString(), models.RoleAdmin), apperrors.ErrUserNotFound)
	assert.ErrorIs(t, env.users.ChangeRole(ctx, nil, userID, models.RoleName("Guest")), apperrors.ErrRoleNotFound)
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	env.registerVerified(t, "bob", "bob@x.com", "B0bPassword")

	resp, err := env.users.ListUsers(ctx, nil, dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "bob", resp.Users[0].Username)
	assert.Equal(t, models.RoleNormalUser, resp.Users[0].Role)
	assert.Equal(t, dto.UserPagination{TotalUsers: 2, TotalPages: 2, CurrentPage: 1, Limit: 1}, resp.Pagination)
}
