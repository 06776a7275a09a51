package services

import (
	"context"
	"strings"
	"testing"

	"messaging_backend/internal/auth"
	"messaging_backend/internal/models"
	"messaging_backend/internal/services/dto"
	"messaging_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) claimsFor(t *testing.T, username, password string) *auth.Claims {
	t.Helper()
	login, err := e.auth.Login(context.Background(), nil, &dto.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	claims, err := e.tokens.VerifyAccessToken(login.AccessToken)
	require.NoError(t, err)
	return claims
}

func TestMessages_AliceAndBob(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	bobID := env.registerVerified(t, "bob", "bob@x.com", "B0bPassword")
	alice := env.claimsFor(t, "alice", "Str0ng!Pw")
	bob := env.claimsFor(t, "bob", "B0bPassword")

	sent, err := env.messages.Send(ctx, nil, alice, &dto.SendMessageRequest{Content: "  hi bob  ", RecipientID: bobID})
	require.NoError(t, err)
	assert.Equal(t, "hi bob", sent.Content)
	assert.Equal(t, alice.UserID, sent.SenderID)
	assert.False(t, sent.IsRead)

	require.Len(t, env.notifier.events, 1)
	assert.Equal(t, bobID, env.notifier.events[0].userID)
	assert.Equal(t, EventNewMessage, env.notifier.events[0].event)

	list, err := env.messages.List(ctx, nil, bob, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Messages, 1)
	item := list.Messages[0]
	assert.False(t, item.IsRead)
	assert.Nil(t, item.ReadAt)
	assert.Equal(t, "alice", item.Sender.Username)
	assert.Equal(t, "bob", item.Recipient.Username)

	require.NoError(t, env.messages.MarkRead(ctx, nil, bob, sent.ID))

	list, err = env.messages.List(ctx, nil, bob, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Messages, 1)
	assert.True(t, list.Messages[0].IsRead)
	assert.NotNil(t, list.Messages[0].ReadAt)
}

func TestSend_UnknownRecipient(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	alice := env.claimsFor(t, "alice", "Str0ng!Pw")

	_, err := env.messages.Send(context.Background(), nil, alice, &dto.SendMessageRequest{
		Content: "hello", RecipientID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, apperrors.ErrRecipientNotFound)
	assert.Empty(t, env.notifier.events)
}

func TestList_VisibilityAndPagination(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	bobID := env.registerVerified(t, "bob", "bob@x.com", "B0bPassword")
	carolID := env.registerVerified(t, "carol", "carol@x.com", "CarolPass1")
	adminID := env.registerVerified(t, "admin", "admin@x.com", "Adm1nPass")
	require.NoError(t, env.users.ChangeRole(ctx, nil, adminID, models.RoleAdmin))

	alice := env.claimsFor(t, "alice", "Str0ng!Pw")
	bob := env.claimsFor(t, "bob", "B0bPassword")
	carol := env.claimsFor(t, "carol", "CarolPass1")
	admin := env.claimsFor(t, "admin", "Adm1nPass")

	for i := 0; i < 12; i++ {
		_, err := env.messages.Send(ctx, nil, alice, &dto.SendMessageRequest{Content: "to bob", RecipientID: bobID})
		require.NoError(t, err)
	}
	_, err := env.messages.Send(ctx, nil, bob, &dto.SendMessageRequest{Content: "to carol", RecipientID: carolID})
	require.NoError(t, err)

	page1, err := env.messages.List(ctx, nil, alice, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page1.Messages, 10)
	assert.Equal(t, dto.MessagePagination{TotalMessages: 12, TotalPages: 2, CurrentPage: 1, Limit: 10}, page1.Pagination)

	page2, err := env.messages.List(ctx, nil, alice, dto.PageRequest{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page2.Messages, 2)

	bobs, err := env.messages.List(ctx, nil, bob, dto.PageRequest{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(13), bobs.Pagination.TotalMessages)
	assert.Equal(t, "to carol", bobs.Messages[0].Content, "newest first")

	carols, err := env.messages.List(ctx, nil, carol, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), carols.Pagination.TotalMessages)

	all, err := env.messages.List(ctx, nil, admin, dto.PageRequest{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(13), all.Pagination.TotalMessages)
}

func TestMarkRead_Permissions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	bobID := env.registerVerified(t, "bob", "bob@x.com", "B0bPassword")
	adminID := env.registerVerified(t, "admin", "admin@x.com", "Adm1nPass")
	require.NoError(t, env.users.ChangeRole(ctx, nil, adminID, models.RoleAdmin))

	alice := env.claimsFor(t, "alice", "Str0ng!Pw")
	admin := env.claimsFor(t, "admin", "Adm1nPass")

	msg, err := env.messages.Send(ctx, nil, alice, &dto.SendMessageRequest{Content: "hi", RecipientID: bobID})
	require.NoError(t, err)

	assert.ErrorIs(t, env.messages.MarkRead(ctx, nil, alice, msg.ID), apperrors.ErrNotMessageRecipient, "sender is not recipient")
	assert.ErrorIs(t, env.messages.MarkRead(ctx, nil, alice, uuid.NewString()), apperrors.ErrMessageNotFound)
	assert.NoError(t, env.messages.MarkRead(ctx, nil, admin, msg.ID))
}

func TestDelete_SuperAdminOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	bobID := env.registerVerified(t, "bob", "bob@x.com", "B0bPassword")
	rootID := env.registerVerified(t, "root", "root@x.com", "R00tPassword")
	require.NoError(t, env.users.ChangeRole(ctx, nil, rootID, models.RoleSuperAdmin))
	adminID := env.registerVerified(t, "admin", "admin@x.com", "Adm1nPass")
	require.NoError(t, env.users.ChangeRole(ctx, nil, adminID, models.RoleAdmin))

	alice := env.claimsFor(t, "alice", "Str0ng!Pw")
	admin := env.claimsFor(t, "admin", "Adm1nPass")
	root := env.claimsFor(t, "root", "R00tPassword")

	msg, err := env.messages.Send(ctx, nil, alice, &dto.SendMessageRequest{Content: "hi", RecipientID: bobID})
	require.NoError(t, err)

	assert.ErrorIs(t, env.messages.Delete(ctx, nil, alice, msg.ID), apperrors.ErrInsufficientPermissions)
	assert.ErrorIs(t, env.messages.Delete(ctx, nil, admin, msg.ID), apperrors.ErrInsufficientPermissions)
	require.NoError(t, env.messages.Delete(ctx, nil, root, msg.ID))
	assert.ErrorIs(t, env.messages.Delete(ctx, nil, root, msg.ID), apperrors.ErrMessageNotFound)
}

func TestSend_ContentStoredTrimmed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.registerVerified(t, "alice", "alice@x.com", "Str0ng!Pw")
	bobID := env.registerVerified(t, "bob", "bob@x.com", "B0bPassword")
	alice := env.claimsFor(t, "alice", "Str0ng!Pw")

	content := strings.Repeat("a", 2000)
	sent, err := env.messages.Send(context.Background(), nil, alice, &dto.SendMessageRequest{Content: "\n" + content + "\n", RecipientID: bobID})
	require.NoError(t, err)
	assert.Equal(t, content, sent.Content)
}
