package http

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarerhq/tours-api/internal/application"
	"github.com/wayfarerhq/tours-api/internal/domain"
	"github.com/wayfarerhq/tours-api/internal/ports"
)

var testBaseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	handler    *Handler
	transport  *SessionTransport
	users      *memUsers
	tokens     *memIssuer
	notifier   *memNotifier
	fatalCalls []any
}

func newTestEnv() *testEnv {
	nowFn := func() time.Time { return testBaseTime }
	users := &memUsers{
		byEmail: make(map[string]uuid.UUID),
		byID:    make(map[uuid.UUID]domain.User),
	}
	tokens := &memIssuer{
		ttl:    24 * time.Hour,
		nowFn:  nowFn,
		claims: map[string]ports.SessionClaims{},
	}
	notifier := &memNotifier{}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			FailedLoginThreshold: 5,
			LockoutDuration:      30 * time.Minute,
		},
		Users:    users,
		Hasher:   memHasher{},
		Tokens:   tokens,
		Resets:   &memResets{},
		Lockouts: &memLockouts{state: map[string]ports.LockoutState{}},
		Notifier: notifier,
		Clock:    ports.ClockFunc(nowFn),
	})

	env := &testEnv{
		transport: NewSessionTransport(time.Hour, false, nowFn),
		users:     users,
		tokens:    tokens,
		notifier:  notifier,
	}
	env.handler = NewHandler(svc, env.transport, func(reason any) {
		env.fatalCalls = append(env.fatalCalls, reason)
	})
	return env
}

// seedUser inserts an account directly into the store, bypassing signup, so
// tests can set roles and timestamps signup never would.
func (e *testEnv) seedUser(t *testing.T, name, email, password, role string) domain.User {
	t.Helper()
	u := domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: "hash:" + password,
		Active:       true,
		CreatedAt:    testBaseTime.Add(-24 * time.Hour),
		UpdatedAt:    testBaseTime.Add(-24 * time.Hour),
	}
	e.users.mu.Lock()
	defer e.users.mu.Unlock()
	e.users.byEmail[email] = u.ID
	e.users.byID[u.ID] = u
	return u
}

func (e *testEnv) tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	return e.tokenIssuedAt(t, user, testBaseTime)
}

func (e *testEnv) tokenIssuedAt(t *testing.T, user domain.User, issuedAt time.Time) string {
	t.Helper()
	token, err := e.tokens.Sign(user.ID, issuedAt)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]uuid.UUID
	byID    map[uuid.UUID]domain.User
	// failWith, when set, makes every read and write fail, simulating an
	// unreachable store.
	failWith error
}

func (m *memUsers) find(predicate func(domain.User) bool, withPassword bool) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return domain.User{}, m.failWith
	}
	for _, u := range m.byID {
		if !u.Active || !predicate(u) {
			continue
		}
		if !withPassword {
			u.PasswordHash = ""
		}
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Email == email }, false)
}

func (m *memUsers) FindByEmailWithPassword(_ context.Context, email string) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Email == email }, true)
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id }, false)
}

func (m *memUsers) FindByIDWithPassword(_ context.Context, id uuid.UUID) (domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id }, true)
}

func (m *memUsers) Create(_ context.Context, params ports.CreateUserParams) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[params.Email]; ok {
		return domain.User{}, fmt.Errorf("%w: email already in use", domain.ErrInvalidInput)
	}
	u := domain.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		Role:         params.Role,
		PasswordHash: params.PasswordHash,
		Active:       true,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	m.byEmail[u.Email] = u.ID
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id uuid.UUID, update ports.ProfileUpdate, updatedAt time.Time) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok || !u.Active {
		return domain.User{}, domain.ErrUserNotFound
	}
	delete(m.byEmail, u.Email)
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Photo != nil {
		u.Photo = *update.Photo
	}
	u.UpdatedAt = updatedAt
	m.byEmail[u.Email] = u.ID
	m.byID[id] = u
	u.PasswordHash = ""
	return u, nil
}

func (m *memUsers) SetPassword(_ context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok || !u.Active {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &changedAt
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpiresAt = nil
	u.UpdatedAt = changedAt
	m.byID[id] = u
	return nil
}

func (m *memUsers) SetResetToken(_ context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok || !u.Active {
		return domain.ErrUserNotFound
	}
	u.PasswordResetTokenHash = &digest
	u.PasswordResetExpiresAt = &expiresAt
	m.byID[id] = u
	return nil
}

func (m *memUsers) ClearResetToken(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpiresAt = nil
	m.byID[id] = u
	return nil
}

func (m *memUsers) RedeemResetAtomically(_ context.Context, digest string, now time.Time) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if !u.Active || u.PasswordResetTokenHash == nil || *u.PasswordResetTokenHash != digest {
			continue
		}
		if u.PasswordResetExpiresAt == nil || !u.PasswordResetExpiresAt.After(now) {
			continue
		}
		u.PasswordResetTokenHash = nil
		u.PasswordResetExpiresAt = nil
		m.byID[id] = u
		u.PasswordHash = ""
		return u, nil
	}
	return domain.User{}, domain.ErrResetTokenInvalid
}

func (m *memUsers) Deactivate(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	u, ok := m.byID[id]
	if !ok || !u.Active {
		return domain.ErrUserNotFound
	}
	u.Active = false
	u.UpdatedAt = at
	m.byID[id] = u
	return nil
}

type memIssuer struct {
	mu     sync.Mutex
	ttl    time.Duration
	nowFn  func() time.Time
	claims map[string]ports.SessionClaims
}

func (m *memIssuer) Sign(subject uuid.UUID, issuedAt time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := uuid.NewString()
	m.claims[token] = ports.SessionClaims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(m.ttl),
	}
	return token, nil
}

func (m *memIssuer) Verify(raw string) (ports.SessionClaims, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	claims, ok := m.claims[raw]
	if !ok {
		return ports.SessionClaims{}, domain.ErrInvalidToken
	}
	if !claims.ExpiresAt.After(m.nowFn()) {
		return ports.SessionClaims{}, domain.ErrTokenExpired
	}
	return claims, nil
}

type memHasher struct{}

func (memHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (memHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type memResets struct {
	mu  sync.Mutex
	seq int
}

func (m *memResets) Issue(now time.Time) (ports.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	plaintext := fmt.Sprintf("reset-token-%d", m.seq)
	return ports.ResetToken{
		Plaintext: plaintext,
		Digest:    "digest:" + plaintext,
		ExpiresAt: now.Add(10 * time.Minute),
	}, nil
}

func (m *memResets) Digest(plaintext string) string { return "digest:" + plaintext }

type memLockouts struct {
	mu    sync.Mutex
	state map[string]ports.LockoutState
}

func (m *memLockouts) Get(_ context.Context, key string) (ports.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state[key], nil
}

func (m *memLockouts) RecordFailure(_ context.Context, key string, now time.Time, threshold int, lockFor time.Duration) (ports.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state[key]
	st.FailedCount++
	if st.FailedCount >= threshold {
		lockUntil := now.Add(lockFor)
		st.LockedUntil = &lockUntil
	}
	m.state[key] = st
	return st, nil
}

func (m *memLockouts) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, key)
	return nil
}

type memNotifier struct {
	mu        sync.Mutex
	welcomes  []string
	resetURLs []string
}

func (m *memNotifier) SendWelcome(_ context.Context, user domain.User, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, user.Email)
	return nil
}

func (m *memNotifier) SendPasswordReset(_ context.Context, _ domain.User, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetURLs = append(m.resetURLs, resetURL)
	return nil
}
