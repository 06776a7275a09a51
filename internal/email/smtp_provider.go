package email

import (
	"context"
	"fmt"

	"messaging_backend/internal/logger"

	"gopkg.in/gomail.v2"
)

// Dialer is the part of *gomail.Dialer the provider uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPProvider sends account emails through an SMTP relay with gomail.
type SMTPProvider struct {
	config    *SMTPConfig
	dialer    Dialer
	templates TemplateRenderer
}

func NewSMTPProvider(config *SMTPConfig, templates TemplateRenderer) *SMTPProvider {
	return NewSMTPProviderWithDialer(
		config,
		gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		templates,
	)
}

func NewSMTPProviderWithDialer(config *SMTPConfig, dialer Dialer, templates TemplateRenderer) *SMTPProvider {
	return &SMTPProvider{
		config:    config,
		dialer:    dialer,
		templates: templates,
	}
}

func (p *SMTPProvider) SendVerificationEmail(ctx context.Context, to, username, verificationURL string) error {
	return p.sendTemplate(ctx, to, SubjectVerification, TemplateVerification, TemplateData{
		"Username": username,
		"URL":      verificationURL,
	})
}

func (p *SMTPProvider) SendPasswordResetEmail(ctx context.Context, to, username, resetURL string) error {
	return p.sendTemplate(ctx, to, SubjectPasswordReset, TemplatePasswordReset, TemplateData{
		"Username":  username,
		"URL":       resetURL,
		"ExpiresIn": p.config.ResetTokenTTL.String(),
	})
}

func (p *SMTPProvider) sendTemplate(ctx context.Context, to, subject, templateName string, data TemplateData) error {
	body, err := p.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	err = p.Send(ctx, &Email{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: body,
	})
	logger.MailLog(templateName, to, err)
	return err
}

// Send delivers a rendered email.
func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	if p.config.FromName != "" {
		m.SetAddressHeader("From", p.config.FromEmail, p.config.FromName)
	} else {
		m.SetHeader("From", p.config.FromEmail)
	}
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.HTMLBody)

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
