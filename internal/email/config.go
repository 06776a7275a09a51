package email

import "time"

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration

	// ResetTokenTTL is only used to tell the user how long the reset link lives.
	ResetTokenTTL time.Duration
}

func DefaultConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:          "localhost",
		Port:          587,
		Timeout:       30 * time.Second,
		ResetTokenTTL: time.Hour,
	}
}
