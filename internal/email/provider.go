package email

import "context"

// Provider delivers account emails. Errors are returned as-is; nothing is retried or queued.
type Provider interface {
	SendVerificationEmail(ctx context.Context, to, username, verificationURL string) error
	SendPasswordResetEmail(ctx context.Context, to, username, resetURL string) error
}

// TemplateRenderer renders named html templates.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
}

const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"

	SubjectVerification  = "Verify Your Email"
	SubjectPasswordReset = "Password Reset Request"
)
