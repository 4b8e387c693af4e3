package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wayfarerhq/tours-api/internal/domain"
	"github.com/wayfarerhq/tours-api/internal/ports"
)

// safeColumns is the default read projection. The credential hash is absent:
// callers that need it must go through the WithPassword reads.
var safeColumns = []string{
	"id", "name", "email", "photo", "role",
	"password_changed_at", "password_reset_token_hash", "password_reset_expires_at",
	"active", "created_at", "updated_at",
}

// UserStore is the gorm-backed persistence adapter for marketplace accounts.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// activeOnly is the single enforced soft-delete filter. Every read goes
// through it; there is no unfiltered read path.
func activeOnly(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findOne(ctx, false, "email = ?", email)
}

func (s *UserStore) FindByEmailWithPassword(ctx context.Context, email string) (domain.User, error) {
	return s.findOne(ctx, true, "email = ?", email)
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.findOne(ctx, false, "id = ?", id)
}

func (s *UserStore) FindByIDWithPassword(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.findOne(ctx, true, "id = ?", id)
}

func (s *UserStore) findOne(ctx context.Context, withPassword bool, query string, arg any) (domain.User, error) {
	tx := s.db.WithContext(ctx).Scopes(activeOnly)
	if !withPassword {
		tx = tx.Select(safeColumns)
	}
	var rec userModel
	if err := tx.Where(query, arg).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

func (s *UserStore) Create(ctx context.Context, params ports.CreateUserParams) (domain.User, error) {
	if !domain.ValidRole(params.Role) {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, params.Role)
	}
	rec := userModel{
		Name:         params.Name,
		Email:        params.Email,
		Photo:        "default.jpg",
		Role:         params.Role,
		PasswordHash: params.PasswordHash,
		Active:       true,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, fmt.Errorf("%w: email already in use", domain.ErrInvalidInput)
		}
		return domain.User{}, err
	}
	rec.PasswordHash = ""
	return toDomainUser(rec), nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, update ports.ProfileUpdate, updatedAt time.Time) (domain.User, error) {
	fields := map[string]any{"updated_at": updatedAt}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.Photo != nil {
		fields["photo"] = *update.Photo
	}

	res := s.db.WithContext(ctx).
		Model(&userModel{}).
		Scopes(activeOnly).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.User{}, fmt.Errorf("%w: email already in use", domain.ErrInvalidInput)
		}
		return domain.User{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.FindByID(ctx, id)
}

// SetPassword is the only write path that touches the credential hash. It
// stamps password_changed_at and clears any pending reset in the same
// statement, so a completed change always invalidates an outstanding reset.
func (s *UserStore) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&userModel{}).
		Scopes(activeOnly).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":             passwordHash,
			"password_changed_at":       changedAt,
			"password_reset_token_hash": nil,
			"password_reset_expires_at": nil,
			"updated_at":                changedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&userModel{}).
		Scopes(activeOnly).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_reset_token_hash": digest,
			"password_reset_expires_at": expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_reset_token_hash": nil,
			"password_reset_expires_at": nil,
		}).Error
}

// RedeemResetAtomically locks the matching row, then clears both reset
// fields inside the same transaction. With two concurrent redemptions of one
// digest, the second transaction finds the fields already cleared and fails.
func (s *UserStore) RedeemResetAtomically(ctx context.Context, digest string, now time.Time) (domain.User, error) {
	var rec userModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(activeOnly).
			Where("password_reset_token_hash = ?", digest).
			Where("password_reset_expires_at > ?", now).
			Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrResetTokenInvalid
			}
			return err
		}
		return tx.Model(&userModel{}).
			Where("id = ?", rec.ID).
			Updates(map[string]any{
				"password_reset_token_hash": nil,
				"password_reset_expires_at": nil,
			}).Error
	})
	if err != nil {
		return domain.User{}, err
	}
	rec.PasswordResetTokenHash = nil
	rec.PasswordResetExpiresAt = nil
	rec.PasswordHash = ""
	return toDomainUser(rec), nil
}

func (s *UserStore) Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&userModel{}).
		Scopes(activeOnly).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     false,
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
