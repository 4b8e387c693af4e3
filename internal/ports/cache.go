package ports

import (
	"context"
	"time"
)

// LockoutState is the current brute-force lockout envelope for a login key.
type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

// LockoutStore keeps short-lived failed-login counters outside the process so
// request handling stays stateless.
type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockFor time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}
