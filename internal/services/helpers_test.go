package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"messaging_backend/internal/auth"
	"messaging_backend/internal/repositories/memory"

	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	kind     string
	to       string
	username string
	url      string
}

type fakeEmailProvider struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeEmailProvider) SendVerificationEmail(_ context.Context, to, username, url string) error {
	return f.record("verification", to, username, url)
}

func (f *fakeEmailProvider) SendPasswordResetEmail(_ context.Context, to, username, url string) error {
	return f.record("reset", to, username, url)
}

func (f *fakeEmailProvider) record(kind, to, username, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{kind: kind, to: to, username: username, url: url})
	return nil
}

func (f *fakeEmailProvider) last(t *testing.T) sentEmail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no email sent")
	return f.sent[len(f.sent)-1]
}

type notification struct {
	userID  string
	event   string
	payload interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (f *fakeNotifier) Notify(userID, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notification{userID: userID, event: event, payload: payload})
}

type testEnv struct {
	store    *memory.Store
	tokens   *auth.TokenIssuer
	mailer   *fakeEmailProvider
	notifier *fakeNotifier
	auth     *AuthServiceImpl
	messages *MessageServiceImpl
	users    *UserServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	tokens, err := auth.NewTokenIssuer("test-secret", 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	mailer := &fakeEmailProvider{}
	notifier := &fakeNotifier{}

	return &testEnv{
		store:    store,
		tokens:   tokens,
		mailer:   mailer,
		notifier: notifier,
		auth: NewAuthService(store.Users(), store.Roles(), store.RefreshTokens(), tokens, mailer, AuthServiceConfig{
			APIURL: "http://api.test/",
		}),
		messages: NewMessageService(store.Messages(), store.Users(), notifier),
		users:    NewUserService(store.Users(), store.Roles()),
	}
}

var errSMTP = errors.New("smtp: connection refused")
