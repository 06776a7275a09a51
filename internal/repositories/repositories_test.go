package repositories_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"messaging_backend/internal/database"
	"messaging_backend/internal/models"
	"messaging_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	dbOnce sync.Once
	testDB *gorm.DB
	dbErr  error
)

// openTx returns a transaction on TEST_DATABASE_URL that is rolled back after the test.
func openTx(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	dbOnce.Do(func() {
		ctx := context.Background()
		testDB, dbErr = database.Connect(ctx, dsn, "test")
		if dbErr == nil {
			dbErr = database.Migrate(ctx, testDB)
		}
	})
	require.NoError(t, dbErr)

	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func createUser(t *testing.T, db *gorm.DB, username string, roleID uint) *models.User {
	t.Helper()
	token := uuid.NewString()
	user := &models.User{
		Username:          username,
		Email:             username + "@example.com",
		PasswordHash:      "$2a$10$abcdefghijklmnopqrstuv",
		VerificationToken: &token,
	}
	require.NoError(t, repositories.NewUserRepository().CreateWithRole(db, user, roleID))
	return user
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	tx := openTx(t)
	users := repositories.NewUserRepository()

	alice := createUser(t, tx, "alice", models.RoleIDNormalUser)
	require.NotEmpty(t, alice.ID)

	found, err := users.FindByUsername(tx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
	assert.Equal(t, models.RoleNormalUser, found.RoleName())
	assert.False(t, found.IsVerified)

	exists, err := users.ExistsByUsernameOrEmail(tx, "someone", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = users.FindByUsername(tx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestUserRepository_DuplicateMapsToAlreadyExists(t *testing.T) {
	tx := openTx(t)
	createUser(t, tx, "alice", models.RoleIDNormalUser)

	dup := &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	err := repositories.NewUserRepository().CreateWithRole(tx, dup, models.RoleIDNormalUser)
	assert.ErrorIs(t, err, repositories.ErrUserAlreadyExists)
}

func TestUserRepository_VerificationTokenIsSingleUse(t *testing.T) {
	tx := openTx(t)
	users := repositories.NewUserRepository()
	alice := createUser(t, tx, "alice", models.RoleIDNormalUser)

	found, err := users.FindByVerificationToken(tx, *alice.VerificationToken)
	require.NoError(t, err)
	require.NoError(t, users.MarkVerified(tx, found.ID))

	_, err = users.FindByVerificationToken(tx, *alice.VerificationToken)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	reloaded, err := users.FindByID(tx, alice.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsVerified)
	assert.Nil(t, reloaded.VerificationToken)
}

func TestRoleRepository_SingleRolePerUser(t *testing.T) {
	tx := openTx(t)
	roles := repositories.NewRoleRepository()
	alice := createUser(t, tx, "alice", models.RoleIDNormalUser)

	err := tx.Transaction(func(inner *gorm.DB) error {
		return inner.Create(&models.UserRole{UserID: alice.ID, RoleID: models.RoleIDAdmin}).Error
	})
	assert.Error(t, err, "a second role row must violate UNIQUE(user_id)")

	require.NoError(t, roles.ReplaceUserRole(tx, alice.ID, models.RoleIDAdmin))
	found, err := repositories.NewUserRepository().FindByID(tx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, found.RoleName())

	assert.ErrorIs(t, roles.ReplaceUserRole(tx, uuid.NewString(), models.RoleIDAdmin), repositories.ErrUserNotFound)

	n, err := roles.CountUsersWithRole(tx, models.RoleAdmin)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}

func TestRefreshTokenRepository_FindValid(t *testing.T) {
	tx := openTx(t)
	tokens := repositories.NewRefreshTokenRepository()
	alice := createUser(t, tx, "alice", models.RoleIDNormalUser)
	now := time.Now().UTC()

	live := &models.RefreshToken{UserID: alice.ID, Token: uuid.NewString(), ExpiresAt: now.Add(time.Hour)}
	expired := &models.RefreshToken{UserID: alice.ID, Token: uuid.NewString(), ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, tokens.Create(tx, live))
	require.NoError(t, tokens.Create(tx, expired))

	found, err := tokens.FindValid(tx, live.Token, now)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.UserID)

	_, err = tokens.FindValid(tx, expired.Token, now)
	assert.ErrorIs(t, err, repositories.ErrRefreshTokenNotFound)

	require.NoError(t, tokens.DeleteByToken(tx, live.Token))
	require.NoError(t, tokens.DeleteByToken(tx, live.Token))
	_, err = tokens.FindValid(tx, live.Token, now)
	assert.ErrorIs(t, err, repositories.ErrRefreshTokenNotFound)
}

func TestMessageRepository(t *testing.T) {
	tx := openTx(t)
	messages := repositories.NewMessageRepository()
	alice := createUser(t, tx, "alice", models.RoleIDNormalUser)
	bob := createUser(t, tx, "bob", models.RoleIDNormalUser)
	carol := createUser(t, tx, "carol", models.RoleIDNormalUser)

	base := time.Now().UTC().Truncate(time.Microsecond)
	first := &models.Message{SenderID: alice.ID, RecipientID: bob.ID, Content: "first", SentAt: base}
	second := &models.Message{SenderID: bob.ID, RecipientID: alice.ID, Content: "second", SentAt: base.Add(time.Second)}
	other := &models.Message{SenderID: carol.ID, RecipientID: bob.ID, Content: "other", SentAt: base.Add(2 * time.Second)}
	for _, m := range []*models.Message{first, second, other} {
		require.NoError(t, messages.Create(tx, m))
	}

	t.Run("participant filter and order", func(t *testing.T) {
		list, total, err := messages.List(tx, repositories.MessageFilter{ParticipantID: alice.ID, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, list, 2)
		assert.Equal(t, "second", list[0].Content)
		assert.Equal(t, "bob", list[0].Sender.Username)
		assert.Equal(t, "alice", list[0].Recipient.Username)
	})

	t.Run("paging", func(t *testing.T) {
		list, total, err := messages.List(tx, repositories.MessageFilter{Limit: 1, Offset: 1, ParticipantID: bob.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, list, 1)
		assert.Equal(t, "second", list[0].Content)
	})

	t.Run("mark read keeps the first timestamp", func(t *testing.T) {
		readAt := base.Add(time.Minute)
		require.NoError(t, messages.MarkRead(tx, first.ID, readAt))
		require.NoError(t, messages.MarkRead(tx, first.ID, readAt.Add(time.Hour)))

		found, err := messages.FindByID(tx, first.ID)
		require.NoError(t, err)
		assert.True(t, found.IsRead)
		require.NotNil(t, found.ReadAt)
		assert.WithinDuration(t, readAt, *found.ReadAt, time.Millisecond)
	})

	t.Run("content length is enforced by the schema", func(t *testing.T) {
		err := tx.Transaction(func(inner *gorm.DB) error {
			return messages.Create(inner, &models.Message{
				SenderID: alice.ID, RecipientID: bob.ID, Content: strings.Repeat("x", 2001), SentAt: base,
			})
		})
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, messages.Delete(tx, other.ID))
		assert.ErrorIs(t, messages.Delete(tx, other.ID), repositories.ErrMessageNotFound)
		_, err := messages.FindByID(tx, other.ID)
		assert.ErrorIs(t, err, repositories.ErrMessageNotFound)
	})
}
