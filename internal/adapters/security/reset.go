package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/wayfarerhq/tours-api/internal/ports"
)

// ResetTokenTTL bounds how long a password-reset token stays redeemable.
const ResetTokenTTL = 10 * time.Minute

// ResetTokenManager mints high-entropy reset tokens and the sha256 digests
// the store indexes on. The plaintext never touches persistence.
type ResetTokenManager struct{}

func NewResetTokenManager() *ResetTokenManager {
	return &ResetTokenManager{}
}

// Issue returns a fresh 256-bit token, its digest, and the expiry at
// now+TTL.
func (m *ResetTokenManager) Issue(now time.Time) (ports.ResetToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return ports.ResetToken{}, fmt.Errorf("generate reset token: %w", err)
	}
	plaintext := hex.EncodeToString(raw)
	return ports.ResetToken{
		Plaintext: plaintext,
		Digest:    m.Digest(plaintext),
		ExpiresAt: now.Add(ResetTokenTTL),
	}, nil
}

// Digest computes the deterministic lookup digest of a candidate plaintext.
func (m *ResetTokenManager) Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
