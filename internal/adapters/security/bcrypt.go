package security

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost the marketplace has always hashed with.
// Raising it transparently re-costs hashes as users next change passwords.
const DefaultBcryptCost = 12

// BcryptHasher implements adaptive password hashing via bcrypt. Cost is
// configurable so environments can trade latency against brute-force margin.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt-backed hasher, falling back to the
// marketplace default cost for non-positive input.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare returns nil on a match. bcrypt's comparison is constant-time over
// the derived key, so mismatches carry no early-exit timing signal.
func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
