package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Notifier delivers account notices to users.
type Notifier interface {
	PasswordReset(ctx context.Context, to, name string) error
}

type SMTPNotifier struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewSMTPNotifier(cfg Config) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (n *SMTPNotifier) PasswordReset(ctx context.Context, to, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := gomail.NewMessage()
	message.SetHeader("From", n.cfg.From)
	message.SetHeader("To", to)
	message.SetHeader("Subject", "Your attendance account password was reset")
	message.SetBody("text/plain", passwordResetBody(name))

	if err := n.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func passwordResetBody(name string) string {
	if name == "" {
		name = "there"
	}
	return "Hello " + name + ",\n\n" +
		"An administrator has reset the password of your attendance account.\n" +
		"Sign in with the new password you were given, and contact your administrator if this was unexpected.\n"
}

// NopNotifier is used when SMTP is not configured.
type NopNotifier struct{}

func (NopNotifier) PasswordReset(context.Context, string, string) error { return nil }
