package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

type userModel struct {
	ID                     uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                   string     `gorm:"column:name"`
	Email                  string     `gorm:"column:email"`
	Photo                  string     `gorm:"column:photo"`
	Role                   string     `gorm:"column:role"`
	PasswordHash           string     `gorm:"column:password_hash"`
	PasswordChangedAt      *time.Time `gorm:"column:password_changed_at"`
	PasswordResetTokenHash *string    `gorm:"column:password_reset_token_hash"`
	PasswordResetExpiresAt *time.Time `gorm:"column:password_reset_expires_at"`
	Active                 bool       `gorm:"column:active"`
	CreatedAt              time.Time  `gorm:"column:created_at"`
	UpdatedAt              time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(row userModel) domain.User {
	return domain.User{
		ID:                     row.ID,
		Name:                   row.Name,
		Email:                  row.Email,
		Photo:                  row.Photo,
		Role:                   row.Role,
		PasswordHash:           row.PasswordHash,
		PasswordChangedAt:      row.PasswordChangedAt,
		PasswordResetTokenHash: row.PasswordResetTokenHash,
		PasswordResetExpiresAt: row.PasswordResetExpiresAt,
		Active:                 row.Active,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}
}
