package email

import (
	"context"

	"messaging_backend/internal/logger"
)

// LogProvider writes links to the log instead of sending mail. Used when email is disabled.
type LogProvider struct{}

func (LogProvider) SendVerificationEmail(ctx context.Context, to, username, verificationURL string) error {
	logger.CtxInfo(ctx, "email disabled, verification link", "to", to, "username", username, "url", verificationURL)
	return nil
}

func (LogProvider) SendPasswordResetEmail(ctx context.Context, to, username, resetURL string) error {
	logger.CtxInfo(ctx, "email disabled, password reset link", "to", to, "username", username, "url", resetURL)
	return nil
}
