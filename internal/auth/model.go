package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	AvatarURL    *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated caller. It is resolved from a bearer token
// and passed explicitly to every service method that acts on behalf of a user.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// Session is returned by a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
