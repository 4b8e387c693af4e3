package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wayfarerhq/tours-api/internal/domain"
	"github.com/wayfarerhq/tours-api/internal/ports"
)

// JWTIssuer signs and verifies HS256 session tokens. The secret and TTL are
// fixed at construction; the issuer holds no other state, so Sign and Verify
// are safe under arbitrary concurrency.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	nowFn  func() time.Time
}

// NewJWTIssuer builds an issuer from the process-wide signing secret.
// The now function feeds expiry validation so boundary behavior is testable.
func NewJWTIssuer(secret string, ttl time.Duration, nowFn func() time.Time) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt signing secret is required")
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, nowFn: nowFn}, nil
}

// Sign produces a token carrying the subject id, the given issue time, and
// an expiry at issuedAt+TTL.
func (i *JWTIssuer) Sign(subject uuid.UUID, issuedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
	})
	return token.SignedString(i.secret)
}

// Verify parses and validates a candidate token. Expired tokens map to
// domain.ErrTokenExpired; everything else that fails maps to
// domain.ErrInvalidToken.
func (i *JWTIssuer) Verify(raw string) (ports.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.nowFn))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.SessionClaims{}, domain.ErrTokenExpired
		}
		return ports.SessionClaims{}, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return ports.SessionClaims{}, domain.ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return ports.SessionClaims{}, domain.ErrInvalidToken
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.SessionClaims{}, domain.ErrInvalidToken
	}

	return ports.SessionClaims{
		Subject:   subject,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
