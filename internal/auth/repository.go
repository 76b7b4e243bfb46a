package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when registering an e-mail that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository stores accounts. Emails are stored normalized, so
// GetByEmail expects the output of NormalizeEmail.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
