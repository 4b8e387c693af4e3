package security_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/wayfarerhq/tours-api/internal/adapters/security"
)

func TestResetTokenIssue(t *testing.T) {
	t.Parallel()

	manager := security.NewResetTokenManager()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := manager.Issue(now)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	raw, err := hex.DecodeString(token.Plaintext)
	if err != nil {
		t.Fatalf("plaintext is not hex: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes of entropy, got %d", len(raw))
	}
	if token.Digest == token.Plaintext {
		t.Fatalf("digest must differ from plaintext")
	}
	if token.Digest != manager.Digest(token.Plaintext) {
		t.Fatalf("issued digest must match Digest of the plaintext")
	}
	if !token.ExpiresAt.Equal(now.Add(security.ResetTokenTTL)) {
		t.Fatalf("unexpected expiry %s", token.ExpiresAt)
	}
}

func TestResetTokensAreUnique(t *testing.T) {
	t.Parallel()

	manager := security.NewResetTokenManager()
	now := time.Now().UTC()

	first, err := manager.Issue(now)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	second, err := manager.Issue(now)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if first.Plaintext == second.Plaintext {
		t.Fatalf("two issued tokens must not collide")
	}
}

func TestResetDigestIsDeterministic(t *testing.T) {
	t.Parallel()

	manager := security.NewResetTokenManager()
	if manager.Digest("candidate") != manager.Digest("candidate") {
		t.Fatalf("digest of the same plaintext must be stable")
	}
	if manager.Digest("candidate") == manager.Digest("other") {
		t.Fatalf("distinct plaintexts must not share a digest")
	}
}
