// Package user holds the account records needed for password resets.
package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// Role gates admin-only operations
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository persists users
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	WithTx(tx pgx.Tx) Repository
}

// ErrUserNotFound indicates an unknown user
type ErrUserNotFound struct {
	Email string
	ID    uuid.UUID
}

func (e ErrUserNotFound) Error() string {
	if e.Email != "" {
		return "user not found: " + e.Email
	}
	return "user not found: " + e.ID.String()
}

func (e ErrUserNotFound) Is(target error) bool { return target == shared.ErrNotFound }

// ErrInvalidResetToken covers unknown, expired and already used reset tokens
type ErrInvalidResetToken struct{}

func (e ErrInvalidResetToken) Error() string { return "reset token is invalid or expired" }

func (e ErrInvalidResetToken) Is(target error) bool { return target == shared.ErrValidation }
