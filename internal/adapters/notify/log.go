package notify

import (
	"context"
	"log/slog"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

// LogNotifier writes would-be mail to the structured log. It is the
// development stand-in when no SMTP relay is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, user domain.User, contextURL string) error {
	n.logger.InfoContext(ctx, "welcome mail",
		"operation", "send_welcome",
		"outcome", "success",
		"to", user.Email,
		"context_url", contextURL,
	)
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, user domain.User, resetURL string) error {
	n.logger.InfoContext(ctx, "password reset mail",
		"operation", "send_password_reset",
		"outcome", "success",
		"to", user.Email,
		"reset_url", resetURL,
	)
	return nil
}
