package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func newTestProvider(t *testing.T, dialer Dialer) *SMTPProvider {
	t.Helper()
	templates, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.FromEmail = "no-reply@example.com"
	cfg.FromName = "Messaging"
	cfg.ResetTokenTTL = time.Hour
	return NewSMTPProviderWithDialer(cfg, dialer, templates)
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSMTPProvider_SendVerificationEmail(t *testing.T) {
	t.Parallel()

	dialer := &captureDialer{}
	p := newTestProvider(t, dialer)

	url := "http://localhost:8080/api/auth/verify-email?token=abc123"
	require.NoError(t, p.SendVerificationEmail(context.Background(), "alice@x.com", "alice", url))

	require.Len(t, dialer.sent, 1)
	m := dialer.sent[0]
	assert.Equal(t, []string{SubjectVerification}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"alice@x.com"}, m.GetHeader("To"))

	raw := render(t, m)
	assert.Contains(t, raw, "alice")
	assert.Contains(t, raw, "abc123")
}

func TestSMTPProvider_SendPasswordResetEmail(t *testing.T) {
	t.Parallel()

	dialer := &captureDialer{}
	p := newTestProvider(t, dialer)

	require.NoError(t, p.SendPasswordResetEmail(context.Background(), "bob@x.com", "bob", "http://x/reset?token=t"))

	require.Len(t, dialer.sent, 1)
	assert.Equal(t, []string{SubjectPasswordReset}, dialer.sent[0].GetHeader("Subject"))
	assert.Contains(t, render(t, dialer.sent[0]), "1h0m0s")
}

func TestSMTPProvider_PropagatesRelayFailure(t *testing.T) {
	t.Parallel()

	relayErr := errors.New("connection refused")
	p := newTestProvider(t, &captureDialer{err: relayErr})

	err := p.SendVerificationEmail(context.Background(), "alice@x.com", "alice", "http://x")
	assert.ErrorIs(t, err, relayErr)
}

func TestSMTPProvider_CancelledContext(t *testing.T) {
	t.Parallel()

	dialer := &captureDialer{}
	p := newTestProvider(t, dialer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.SendVerificationEmail(ctx, "alice@x.com", "alice", "http://x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dialer.sent)
}

func TestTemplateManager_UnknownTemplate(t *testing.T) {
	t.Parallel()

	tm := NewTemplateManager()
	_, err := tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestTemplateManager_EscapesHTML(t *testing.T) {
	t.Parallel()

	tm := NewTemplateManager()
	require.NoError(t, tm.AddTemplate("greet", "<p>{{.Username}}</p>"))

	out, err := tm.Render("greet", TemplateData{"Username": "<script>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;script&gt;</p>", out)
}
