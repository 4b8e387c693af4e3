package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

// CreateUserParams carries the fields the store needs to persist a new
// account. The hash is produced by the caller; the store never sees the
// plaintext password.
type CreateUserParams struct {
	Name         string
	Email        string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

// ProfileUpdate is the allow-list of self-service profile fields.
// Password changes go through SetPassword exclusively so the hashing and
// passwordChangedAt stamping can never be bypassed.
type ProfileUpdate struct {
	Name  *string
	Email *string
	Photo *string
}

// UserStore is the persistence collaborator for marketplace accounts.
//
// Every read implicitly excludes inactive (soft-deleted) users. The default
// reads return users without PasswordHash; the WithPassword variants request
// the hidden hash explicitly for credential verification paths.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	FindByIDWithPassword(ctx context.Context, id uuid.UUID) (domain.User, error)

	Create(ctx context.Context, params CreateUserParams) (domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate, updatedAt time.Time) (domain.User, error)

	// SetPassword replaces the credential hash and stamps passwordChangedAt.
	// It also clears any pending reset fields: a completed password change
	// invalidates an outstanding reset token.
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error

	// SetResetToken persists the digest and expiry of a pending reset.
	// Both fields are written together; they are never set independently.
	SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error

	// ClearResetToken nulls both reset fields, used for rollback when the
	// reset notification cannot be delivered.
	ClearResetToken(ctx context.Context, id uuid.UUID) error

	// RedeemResetAtomically finds the user whose pending reset digest matches
	// and has not expired, and clears both reset fields in the same store
	// operation. Exactly one of two concurrent redemptions of the same digest
	// can succeed. Returns ErrResetTokenInvalid when nothing matches.
	RedeemResetAtomically(ctx context.Context, digest string, now time.Time) (domain.User, error)

	// Deactivate soft-deletes the account; subsequent reads no longer see it.
	Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error
}
