package security_test

import (
	"strings"
	"testing"

	"github.com/wayfarerhq/tours-api/internal/adapters/security"
)

func TestBcryptHashAndCompare(t *testing.T) {
	t.Parallel()

	// Minimum cost keeps the test fast; the verification path is identical.
	hasher := security.NewBcryptHasher(4)

	hash, err := hasher.Hash("pass1234")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "pass1234" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}

	if err := hasher.Compare(hash, "pass1234"); err != nil {
		t.Fatalf("compare with correct password failed: %v", err)
	}
	if err := hasher.Compare(hash, "wrong-pass"); err == nil {
		t.Fatalf("expected mismatch error for wrong password")
	}
}

func TestBcryptHashesAreSalted(t *testing.T) {
	t.Parallel()

	hasher := security.NewBcryptHasher(4)
	first, err := hasher.Hash("pass1234")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := hasher.Hash("pass1234")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password must not collide")
	}
}

func TestBcryptDefaultCostFallback(t *testing.T) {
	t.Parallel()

	hasher := security.NewBcryptHasher(0)
	hash, err := hasher.Hash("pass1234")
	if err != nil {
		t.Fatalf("hash with default cost failed: %v", err)
	}
	if !strings.Contains(hash, "$12$") {
		t.Fatalf("expected default cost 12 in hash, got %q", hash)
	}
}
