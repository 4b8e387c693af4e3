package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

// SMTPConfig holds outbound mail settings resolved at startup.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers account mail through a plain SMTP relay.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) SendWelcome(_ context.Context, user domain.User, contextURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWelcome aboard. Manage your account at %s.\r\n",
		firstName(user.Name), contextURL,
	)
	return n.send(user.Email, "Welcome to the tours marketplace", body)
}

func (n *SMTPNotifier) SendPasswordReset(_ context.Context, user domain.User, resetURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nForgot your password? Submit a PATCH request with your new password and passwordConfirm to:\r\n%s\r\n\r\nThe link is valid for 10 minutes. If you didn't forget your password, ignore this email.\r\n",
		firstName(user.Name), resetURL,
	)
	return n.send(user.Email, "Your password reset token (valid for 10 min)", body)
}

func (n *SMTPNotifier) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
