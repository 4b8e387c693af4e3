package ports

import (
	"context"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

// Notifier delivers account mail out-of-band. Both sends may fail; the
// caller decides whether a failure is best-effort (welcome) or must trigger
// a rollback (password reset).
type Notifier interface {
	SendWelcome(ctx context.Context, user domain.User, contextURL string) error
	SendPasswordReset(ctx context.Context, user domain.User, resetURL string) error
}
