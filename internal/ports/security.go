package ports

import (
	"time"

	"github.com/google/uuid"
)

// PasswordHasher computes and verifies adaptive one-way credential digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when the plaintext matches the hash. The comparison
	// carries no early-exit timing signal.
	Compare(hash, password string) error
}

// SessionClaims is the decoded content of a bearer session token.
type SessionClaims struct {
	Subject   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies self-contained session tokens. Both
// operations are pure functions of their input and the process-wide signing
// secret; no external state is consulted.
type TokenIssuer interface {
	Sign(subject uuid.UUID, issuedAt time.Time) (string, error)
	// Verify returns domain.ErrInvalidToken for malformed input or a bad
	// signature and domain.ErrTokenExpired past the embedded expiry.
	Verify(raw string) (SessionClaims, error)
}

// ResetToken is a freshly issued password-reset secret. Plaintext is handed
// to the user exactly once; only Digest is ever persisted.
type ResetToken struct {
	Plaintext string
	Digest    string
	ExpiresAt time.Time
}

// ResetTokenManager issues single-use, time-boxed reset tokens and digests
// candidate plaintexts for redemption lookup.
type ResetTokenManager interface {
	Issue(now time.Time) (ResetToken, error)
	Digest(plaintext string) string
}
