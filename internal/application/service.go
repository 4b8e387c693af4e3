package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarerhq/tours-api/internal/domain"
	"github.com/wayfarerhq/tours-api/internal/ports"
)

// passwordChangedSkew backdates passwordChangedAt so a token minted in the
// same request as the credential write is not rejected as stale by the
// freshness check when the write lands a moment after signing.
const passwordChangedSkew = time.Second

// AuthResult is what every credential workflow that logs the caller in
// returns: the sanitized subject plus a fresh session token.
type AuthResult struct {
	User  domain.User
	Token string
}

// Service orchestrates the credential lifecycle: signup, login,
// forgot/reset/update password, and the self-service account operations.
// It composes the hasher, token issuer, reset manager, user store, lockout
// store, and notifier; it keeps no mutable state of its own.
type Service struct {
	cfg      Config
	users    ports.UserStore
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	resets   ports.ResetTokenManager
	lockouts ports.LockoutStore
	notifier ports.Notifier
	nowFn    func() time.Time
}

type Dependencies struct {
	Config   Config
	Users    ports.UserStore
	Hasher   ports.PasswordHasher
	Tokens   ports.TokenIssuer
	Resets   ports.ResetTokenManager
	Lockouts ports.LockoutStore
	Notifier ports.Notifier
	Clock    ports.Clock
}

func NewService(deps Dependencies) *Service {
	nowFn := time.Now
	if deps.Clock != nil {
		nowFn = deps.Clock.Now
	}
	return &Service{
		cfg:      deps.Config,
		users:    deps.Users,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		resets:   deps.Resets,
		lockouts: deps.Lockouts,
		notifier: deps.Notifier,
		nowFn:    func() time.Time { return nowFn().UTC() },
	}
}

// Signup creates the account, sends the welcome mail best-effort, and logs
// the new user in. passwordChangedAt stays unset at creation; only later
// changes stamp it.
func (s *Service) Signup(ctx context.Context, req SignupRequest, contextURL string) (AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return AuthResult{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if err := validateNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return AuthResult{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, ports.CreateUserParams{
		Name:         name,
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: passwordHash,
		CreatedAt:    s.nowFn(),
	})
	if err != nil {
		return AuthResult{}, err
	}

	// Welcome delivery is best-effort: the account already exists and the
	// caller gets their session either way.
	if err := s.notifier.SendWelcome(ctx, user, contextURL); err != nil {
		slog.Default().WarnContext(ctx, "welcome mail failed",
			"operation", "signup",
			"outcome", "partial",
			"user_id", user.ID,
			"error", err.Error(),
		)
	}

	return s.issueSession(user)
}

// Login verifies the email/password pair. An unknown email and a wrong
// password produce the identical error so responses carry no enumeration
// signal. Repeated failures feed the lockout store.
func (s *Service) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if req.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	lockKey := "login:" + email
	if state, lockErr := s.lockouts.Get(ctx, lockKey); lockErr != nil {
		// Fails open: a lockout-store outage must not block every login.
		slog.Default().WarnContext(ctx, "lockout lookup failed",
			"operation", "login",
			"outcome", "partial",
			"error", lockErr.Error(),
		)
	} else if state.LockedUntil != nil && state.LockedUntil.After(s.nowFn()) {
		return AuthResult{}, domain.ErrAccountLocked
	}

	user, err := s.users.FindByEmailWithPassword(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		// Unknown email takes the same failure path as a wrong password.
		// Store faults do not: they are not a credentials miss and must
		// never feed the lockout counter.
		s.recordLoginFailure(ctx, lockKey)
		return AuthResult{}, domain.ErrInvalidCredentials
	case err != nil:
		return AuthResult{}, fmt.Errorf("find user by email: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.recordLoginFailure(ctx, lockKey)
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	if err := s.lockouts.Clear(ctx, lockKey); err != nil {
		slog.Default().WarnContext(ctx, "lockout clear failed",
			"operation", "login",
			"outcome", "partial",
			"error", err.Error(),
		)
	}

	return s.issueSession(user)
}

// ForgotPassword issues a reset token, persists its digest and expiry, and
// mails the plaintext. When delivery fails the pending reset fields are
// rolled back before the error surfaces, so no half-committed reset state
// survives the request.
//
// Unknown emails return ErrUserNotFound (a 404). Login hides account
// existence while this path reveals it; see DESIGN.md before changing
// either side.
func (s *Service) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user by email: %w", err)
	}

	token, err := s.resets.Issue(s.nowFn())
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, token.Digest, token.ExpiresAt); err != nil {
		return err
	}

	resetURL := strings.TrimRight(resetURLBase, "/") + "/api/v1/users/resetPassword/" + token.Plaintext
	if err := s.notifier.SendPasswordReset(ctx, user, resetURL); err != nil {
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			slog.Default().ErrorContext(ctx, "reset rollback failed",
				"operation", "forgot_password",
				"outcome", "failure",
				"user_id", user.ID,
				"error", clearErr.Error(),
			)
		}
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}
	return nil
}

// ResetPassword redeems a reset token and sets the new credential. The
// redemption is a single atomic find-and-clear in the store, so a second
// concurrent call with the same token cannot also succeed.
func (s *Service) ResetPassword(ctx context.Context, plaintext string, req ResetPasswordRequest) (AuthResult, error) {
	if strings.TrimSpace(plaintext) == "" {
		return AuthResult{}, domain.ErrResetTokenInvalid
	}
	if err := validateNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.RedeemResetAtomically(ctx, s.resets.Digest(plaintext), s.nowFn())
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.setPassword(ctx, &user, req.Password); err != nil {
		return AuthResult{}, err
	}
	return s.issueSession(user)
}

// UpdatePassword changes the credential of an already-authenticated subject
// after re-verifying the current password, then reissues a session token.
func (s *Service) UpdatePassword(ctx context.Context, subject uuid.UUID, req UpdatePasswordRequest) (AuthResult, error) {
	user, err := s.users.FindByIDWithPassword(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return AuthResult{}, domain.ErrUserNotFound
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.PasswordCurrent); err != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	if err := validateNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return AuthResult{}, err
	}

	if err := s.setPassword(ctx, &user, req.Password); err != nil {
		return AuthResult{}, err
	}
	return s.issueSession(user)
}

// Authenticate resolves a candidate bearer token into a live subject. It is
// the service half of the gatekeeper: signature and expiry via the issuer,
// subject existence via the store, then the freshness check against
// passwordChangedAt.
func (s *Service) Authenticate(ctx context.Context, raw string) (domain.User, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	if user.PasswordChangedAfter(claims.IssuedAt) {
		return domain.User{}, domain.ErrStaleToken
	}
	return user, nil
}

// Me returns the sanitized current account.
func (s *Service) Me(ctx context.Context, subject uuid.UUID) (domain.User, error) {
	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateMe applies the allow-listed profile fields. Password fields never
// travel this path; they are rejected at the handler.
func (s *Service) UpdateMe(ctx context.Context, subject uuid.UUID, req UpdateMeRequest) (domain.User, error) {
	update := ports.ProfileUpdate{Name: req.Name}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return domain.User{}, err
		}
		update.Email = &email
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return domain.User{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}
	return s.users.UpdateProfile(ctx, subject, update, s.nowFn())
}

// DeleteMe soft-deletes the current account. The row stays; reads stop
// seeing it.
func (s *Service) DeleteMe(ctx context.Context, subject uuid.UUID) error {
	return s.users.Deactivate(ctx, subject, s.nowFn())
}

// DeactivateUser is the admin-only variant of account deactivation.
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Deactivate(ctx, id, s.nowFn())
}

// setPassword is the single funnel for credential writes after creation:
// hash, stamp passwordChangedAt slightly in the past, clear pending reset
// state. Bulk updates never touch the hash.
func (s *Service) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	changedAt := s.nowFn().Add(-passwordChangedSkew)
	if err := s.users.SetPassword(ctx, user.ID, hash, changedAt); err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt
	user.PasswordResetTokenHash = nil
	user.PasswordResetExpiresAt = nil
	return nil
}

func (s *Service) issueSession(user domain.User) (AuthResult, error) {
	token, err := s.tokens.Sign(user.ID, s.nowFn())
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign session token: %w", err)
	}
	user.PasswordHash = ""
	return AuthResult{User: user, Token: token}, nil
}

func (s *Service) recordLoginFailure(ctx context.Context, lockKey string) {
	if _, err := s.lockouts.RecordFailure(ctx, lockKey, s.nowFn(), s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration); err != nil {
		slog.Default().WarnContext(ctx, "lockout record failed",
			"operation", "login",
			"outcome", "partial",
			"error", err.Error(),
		)
	}
}

func validateNewPassword(password, confirm string) error {
	if password != confirm {
		return fmt.Errorf("%w: passwords are not the same", domain.ErrInvalidInput)
	}
	return domain.ValidatePassword(password)
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	// Bare address only: "Name <a@b.com>" parses but must not become the
	// stored email, so anything beyond the address itself is rejected.
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}
