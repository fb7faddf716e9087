package core

import (
	"context"
	"time"
)

// User represents an authenticated system user.
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// Capability returns the write authorization carried by u.
func (u *User) Capability() *Capability {
	if u == nil || !u.IsActive {
		return nil
	}
	return &Capability{UserID: u.ID, Role: u.Role}
}

// UserService provides user lookup and credential verification.
type UserService interface {
	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)

	// Authenticate verifies the password against the stored bcrypt hash.
	// Unknown users and wrong passwords both return ErrUnauthorized.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// CreateUser stores a new user with a bcrypt-hashed password.
	CreateUser(ctx context.Context, username, email, password, role string) (*User, error)
}
